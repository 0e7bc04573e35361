package middlewares

import (
	"time"

	helper "arcevents_backend/internals/helpers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func limitBy(max int, window time.Duration, message string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return helper.JsonError(c, fiber.StatusTooManyRequests, message)
		},
	})
}

// Global limiter for every endpoint
func GlobalRateLimiter() fiber.Handler {
	return limitBy(100, 1*time.Minute, "too many requests, try again later")
}

// Login routes (admin and controller)
func LoginRateLimiter() fiber.Handler {
	return limitBy(5, 1*time.Minute, "too many login attempts, try again in a minute")
}

// Controller self-service signup
func RegisterRateLimiter() fiber.Handler {
	return limitBy(3, 5*time.Minute, "too many signup attempts, wait a few minutes")
}

// Event registration submissions (multipart with receipt)
func SubmissionRateLimiter() fiber.Handler {
	return limitBy(10, 10*time.Minute, "too many registration submissions, try again later")
}

package middlewares

import (
	"runtime/debug"

	helper "arcevents_backend/internals/helpers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
)

// RecoveryMiddleware turns a panic into a 500 and logs the stack
func RecoveryMiddleware() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			log.Error().
				Str("request_id", helper.RequestID(c)).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Interface("panic", e).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")
		},
	})
}

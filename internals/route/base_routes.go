package routes

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
)

var startTime = time.Now()

func BaseRoutes(app *fiber.App, ping func(ctx context.Context) error) {
	startTime = time.Now()

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("arcevents backend is running")
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		dbStatus := "Connected"
		serverStatus := "OK"
		httpStatus := fiber.StatusOK

		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if ping == nil || ping(ctx) != nil {
			dbStatus = "Database connection error"
			serverStatus = "DOWN"
			httpStatus = fiber.StatusServiceUnavailable
		}

		return c.Status(httpStatus).JSON(fiber.Map{
			"status":         serverStatus,
			"database":       dbStatus,
			"server_time":    time.Now().Format(time.RFC3339),
			"uptime_seconds": int(time.Since(startTime).Seconds()),
			"environment":    os.Getenv("RAILWAY_ENVIRONMENT"),
		})
	})
}

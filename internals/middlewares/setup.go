package middlewares

import (
	"time"

	"arcevents_backend/internals/middlewares/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
)

// SetupMiddlewares installs the global chain in order: request id, recovery, access log,
// CORS, compression, etag and the global rate limit.
func SetupMiddlewares(app *fiber.App, origins []string, requestTimeout time.Duration) {
	app.Use(RequestContext(requestTimeout))
	app.Use(RecoveryMiddleware())
	app.Use(logger.LoggerMiddleware())
	app.Use(CorsMiddleware(origins))
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	app.Use(GlobalRateLimiter())
}

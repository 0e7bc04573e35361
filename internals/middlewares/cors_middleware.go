// middlewares/cors.go

package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CorsMiddleware allows the configured front-end origins with credentials (session cookies).
func CorsMiddleware(origins []string) fiber.Handler {
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	return cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ", "),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID, X-OAuth-Uid, X-OAuth-Email, X-OAuth-Name",
		ExposeHeaders:    "X-Request-ID",
		AllowCredentials: true,
	})
}

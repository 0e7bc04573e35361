package details

import (
	accountRoute "arcevents_backend/internals/features/accounts/route"
	authRoute "arcevents_backend/internals/features/auth/route"

	"github.com/gofiber/fiber/v2"
)

// AuthRoutes must be mounted before the guarded /admin and /controller groups,
// whose middleware would otherwise run for the login paths too.
func AuthRoutes(api fiber.Router, h Handlers, allowSeed bool) {
	accountRoute.AuthRoutes(api, h.Auth, allowSeed)
	authRoute.GoogleRoutes(api, h.Google)
}

package route

import (
	"arcevents_backend/internals/features/auth/controller"
	"arcevents_backend/internals/middlewares"

	"github.com/gofiber/fiber/v2"
)

func GoogleRoutes(api fiber.Router, ctrl *controller.GoogleAuthController) {
	api.Post("/auth/google", middlewares.LoginRateLimiter(), ctrl.Exchange)
}

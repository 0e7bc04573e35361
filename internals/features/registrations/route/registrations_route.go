package route

import (
	"arcevents_backend/internals/features/registrations/controller"
	"arcevents_backend/internals/middlewares"

	"github.com/gofiber/fiber/v2"
)

// RegistrationUserRoutes must be mounted before the public /:slug routes.
func RegistrationUserRoutes(events fiber.Router, requireUser fiber.Handler, ctrl *controller.RegistrationController) {
	events.Get("/registrations/mine", requireUser, ctrl.ListMine)
	events.Post("/:slug/register", middlewares.SubmissionRateLimiter(), requireUser, ctrl.Register)
	events.Get("/:slug/me", requireUser, ctrl.Mine)
}

func RegistrationAdminRoutes(admin fiber.Router, ctrl *controller.RegistrationController) {
	g := admin.Group("/events/:id")
	g.Get("/stats", ctrl.AdminStats)
	g.Get("/registrations", ctrl.AdminList)
	g.Put("/registrations/:regId/status", ctrl.SetStatus)

	admin.Delete("/registrations/:regId/receipt", ctrl.ReleaseReceipt)
}

func RegistrationControllerRoutes(ctl fiber.Router, ctrl *controller.RegistrationController) {
	g := ctl.Group("/dashboard")
	g.Get("/events", ctrl.DashboardEvents)
	g.Get("/registrations/:eventId", ctrl.DashboardRegistrations)
}

package route

import (
	"arcevents_backend/internals/features/events/controller"

	"github.com/gofiber/fiber/v2"
)

// EventPublicRoutes is mounted on /api/events after the user-scoped literal paths.
func EventPublicRoutes(events fiber.Router, ctrl *controller.EventController) {
	events.Get("/ongoing", ctrl.ListOngoing)
	events.Get("/:slug", ctrl.GetBySlug)
	events.Get("/:slug/flow", ctrl.GetFlow)
}

func EventAdminRoutes(admin fiber.Router, ctrl *controller.EventController) {
	g := admin.Group("/events")
	g.Get("/", ctrl.AdminList)
	g.Post("/", ctrl.Create)
	g.Patch("/:id", ctrl.Update)
	g.Delete("/:id", ctrl.Purge)
	g.Post("/:id/archive", ctrl.Archive)
	g.Post("/:id/poster", ctrl.UploadPoster)
	g.Post("/:id/qr", ctrl.UploadQR)
}

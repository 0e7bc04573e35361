package details

import (
	eventRoute "arcevents_backend/internals/features/events/route"
	galleryRoute "arcevents_backend/internals/features/gallery/route"
	registrationRoute "arcevents_backend/internals/features/registrations/route"

	"github.com/gofiber/fiber/v2"
)

// EventRoutes mounts /api/events (public + user) and /api/public.
func EventRoutes(api fiber.Router, requireUser fiber.Handler, h Handlers) {
	events := api.Group("/events")
	public := api.Group("/public")

	// literal user paths first so /:slug does not swallow them
	registrationRoute.RegistrationUserRoutes(events, requireUser, h.Registrations)
	eventRoute.EventPublicRoutes(events, h.Events)
	galleryRoute.GalleryPublicRoutes(events, public, h.Gallery)
}

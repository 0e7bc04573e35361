package details

import (
	accountRoute "arcevents_backend/internals/features/accounts/route"
	eventRoute "arcevents_backend/internals/features/events/route"
	galleryRoute "arcevents_backend/internals/features/gallery/route"
	registrationRoute "arcevents_backend/internals/features/registrations/route"

	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(admin fiber.Router, h Handlers) {
	eventRoute.EventAdminRoutes(admin, h.Events)
	galleryRoute.GalleryAdminRoutes(admin, h.Gallery)
	registrationRoute.RegistrationAdminRoutes(admin, h.Registrations)
	accountRoute.ControllerAdminRoutes(admin, h.ControllersAdmin)
}

func ControllerRoutes(ctl fiber.Router, h Handlers) {
	registrationRoute.RegistrationControllerRoutes(ctl, h.Registrations)
}

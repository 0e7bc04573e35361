package details

import (
	accountController "arcevents_backend/internals/features/accounts/controller"
	authController "arcevents_backend/internals/features/auth/controller"
	eventController "arcevents_backend/internals/features/events/controller"
	galleryController "arcevents_backend/internals/features/gallery/controller"
	registrationController "arcevents_backend/internals/features/registrations/controller"
)

// Handlers groups every feature controller the route tree mounts.
type Handlers struct {
	Auth             *accountController.AuthController
	ControllersAdmin *accountController.ControllersAdminController
	Google           *authController.GoogleAuthController
	Events           *eventController.EventController
	Gallery          *galleryController.GalleryController
	Registrations    *registrationController.RegistrationController
}

// file: internals/route/index.go
package routes

import (
	"context"
	"time"

	database "arcevents_backend/internals/databases"
	accountController "arcevents_backend/internals/features/accounts/controller"
	accountRepo "arcevents_backend/internals/features/accounts/repository"
	accountService "arcevents_backend/internals/features/accounts/service"
	authController "arcevents_backend/internals/features/auth/controller"
	"arcevents_backend/internals/features/auth/identity"
	"arcevents_backend/internals/features/auth/session"
	eventController "arcevents_backend/internals/features/events/controller"
	eventModel "arcevents_backend/internals/features/events/model"
	eventRepo "arcevents_backend/internals/features/events/repository"
	eventService "arcevents_backend/internals/features/events/service"
	galleryController "arcevents_backend/internals/features/gallery/controller"
	galleryRepo "arcevents_backend/internals/features/gallery/repository"
	galleryService "arcevents_backend/internals/features/gallery/service"
	registrationController "arcevents_backend/internals/features/registrations/controller"
	registrationRepo "arcevents_backend/internals/features/registrations/repository"
	registrationService "arcevents_backend/internals/features/registrations/service"
	helperOSS "arcevents_backend/internals/helpers/oss"
	authMw "arcevents_backend/internals/middlewares/auth"
	routeDetails "arcevents_backend/internals/route/details"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type AccountStore interface {
	accountService.Store
	registrationService.ControllerCounter
}

type EventStore interface {
	eventService.Store
	FindEventsByIDs(ctx context.Context, ids []uuid.UUID) ([]eventModel.EventModel, error)
}

// Stores is every persistence dependency; gorm repositories in production, testkit.Memory in tests.
type Stores struct {
	Accounts      AccountStore
	Events        EventStore
	Registrations registrationService.Store
	Images        galleryService.Store
}

func NewStores(db *gorm.DB) Stores {
	return Stores{
		Accounts:      accountRepo.NewAccountRepository(db),
		Events:        eventRepo.NewEventRepository(db),
		Registrations: registrationRepo.NewRegistrationRepository(db),
		Images:        galleryRepo.NewImageRepository(db),
	}
}

type Deps struct {
	Blobs         helperOSS.BlobStore
	Issuer        *session.Issuer
	Identity      identity.Verifier
	Limits        helperOSS.UploadLimits
	UploadTimeout time.Duration

	AllowIdentityHeaders bool
	AllowSeed            bool
	SecureCookie         bool
	BcryptCost           int // 0 keeps bcrypt.DefaultCost
}

func SetupRoutes(app *fiber.App, db *gorm.DB, deps Deps) {
	BaseRoutes(app, func(ctx context.Context) error { return database.Ping(ctx, db) })
	Mount(app, NewStores(db), deps)
}

// Mount builds services and controllers over stores and registers every /api route.
func Mount(app *fiber.App, stores Stores, deps Deps) {
	accounts := accountService.NewAccountService(stores.Accounts)
	if deps.BcryptCost > 0 {
		accounts.WithCost(deps.BcryptCost)
	}
	events := eventService.NewEventService(stores.Events, deps.Blobs, deps.UploadTimeout)
	gallery := galleryService.NewGalleryService(stores.Images, stores.Events, deps.Blobs, deps.UploadTimeout)
	registrations := registrationService.NewRegistrationService(
		stores.Registrations, stores.Events, stores.Accounts, deps.Blobs, deps.UploadTimeout)

	h := routeDetails.Handlers{
		Auth:             accountController.NewAuthController(accounts, deps.Issuer, deps.SecureCookie),
		ControllersAdmin: accountController.NewControllersAdminController(accounts, events),
		Google:           authController.NewGoogleAuthController(deps.Identity, deps.Issuer, deps.SecureCookie),
		Events:           eventController.NewEventController(events, deps.Limits),
		Gallery:          galleryController.NewGalleryController(gallery, deps.Limits),
		Registrations:    registrationController.NewRegistrationController(registrations, deps.Limits),
	}

	api := app.Group("/api")

	log.Info().Msg("mounting auth routes")
	routeDetails.AuthRoutes(api, h, deps.AllowSeed)

	log.Info().Bool("identity_headers", deps.AllowIdentityHeaders).Msg("mounting event routes")
	routeDetails.EventRoutes(api, authMw.RequireUser(deps.Issuer, deps.AllowIdentityHeaders), h)

	log.Info().Msg("mounting admin routes")
	admin := api.Group("/admin", authMw.RequireAdmin(deps.Issuer))
	routeDetails.AdminRoutes(admin, h)

	log.Info().Msg("mounting controller routes")
	ctl := api.Group("/controller", authMw.RequireController(deps.Issuer, stores.Accounts))
	routeDetails.ControllerRoutes(ctl, h)
}

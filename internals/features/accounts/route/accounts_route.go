package route

import (
	"arcevents_backend/internals/features/accounts/controller"
	"arcevents_backend/internals/middlewares"

	"github.com/gofiber/fiber/v2"
)

// AuthRoutes mounts the public login/signup endpoints for admins and controllers.
func AuthRoutes(api fiber.Router, ctrl *controller.AuthController, allowSeed bool) {
	admin := api.Group("/admin/auth")
	admin.Post("/login", middlewares.LoginRateLimiter(), ctrl.AdminLogin)
	admin.Post("/logout", ctrl.AdminLogout)
	if allowSeed {
		admin.Post("/seed", ctrl.AdminSeed)
	}

	ctl := api.Group("/controller/auth")
	ctl.Post("/signup", middlewares.RegisterRateLimiter(), ctrl.ControllerSignup)
	ctl.Post("/login", middlewares.LoginRateLimiter(), ctrl.ControllerLogin)
	ctl.Post("/logout", ctrl.ControllerLogout)
}

// ControllerAdminRoutes expects an admin-guarded router.
func ControllerAdminRoutes(admin fiber.Router, ctrl *controller.ControllersAdminController) {
	g := admin.Group("/controllers")
	g.Get("/", ctrl.ListActive)
	g.Get("/pending", ctrl.ListPending)
	g.Post("/:id/approve", ctrl.Approve)
	g.Post("/:id/revoke", ctrl.Revoke)
}

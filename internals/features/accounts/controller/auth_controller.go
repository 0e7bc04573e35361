package controller

import (
	"context"
	"strings"
	"time"

	"arcevents_backend/internals/constants"
	"arcevents_backend/internals/features/accounts/dto"
	"arcevents_backend/internals/features/accounts/model"
	"arcevents_backend/internals/features/auth/session"
	helper "arcevents_backend/internals/helpers"
	authMw "arcevents_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type TokenIssuer interface {
	Issue(s session.Session) (string, time.Time, error)
}

type Authenticator interface {
	CreateAdmin(ctx context.Context, req dto.AdminCreateRequest) (*model.AdminModel, error)
	VerifyAdmin(ctx context.Context, username, password string) (*model.AdminModel, error)
	Signup(ctx context.Context, req dto.ControllerSignupRequest) (*model.ControllerModel, error)
	VerifyController(ctx context.Context, username, password string) (*model.ControllerModel, error)
}

type AuthController struct {
	Accounts     Authenticator
	Issuer       TokenIssuer
	SecureCookie bool
}

func NewAuthController(accounts Authenticator, issuer TokenIssuer, secureCookie bool) *AuthController {
	return &AuthController{Accounts: accounts, Issuer: issuer, SecureCookie: secureCookie}
}

func (ctrl *AuthController) setSessionCookie(c *fiber.Ctx, role, token string, exp time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     authMw.CookieName(role),
		Value:    token,
		Expires:  exp,
		HTTPOnly: true,
		Secure:   ctrl.SecureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

func (ctrl *AuthController) clearSessionCookie(c *fiber.Ctx, role string) {
	c.Cookie(&fiber.Cookie{
		Name:     authMw.CookieName(role),
		Value:    "",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   ctrl.SecureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

/* ===================== ADMIN ===================== */

// POST /api/admin/auth/login
func (ctrl *AuthController) AdminLogin(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := helper.ParseBody(c, &req); err != nil {
		return helper.JsonFromError(c, err)
	}
	admin, err := ctrl.Accounts.VerifyAdmin(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	token, exp, err := ctrl.Issuer.Issue(session.AdminSession{AdminID: admin.AdminID, Username: admin.AdminUsername})
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	ctrl.setSessionCookie(c, constants.RoleAdmin, token, exp)
	log.Info().Str("role", constants.RoleAdmin).Str("actor_id", admin.AdminID.String()).Msg("login")

	return helper.JsonOK(c, "login successful", dto.TokenResponse{
		Token:     token,
		ExpiresAt: exp,
		Role:      constants.RoleAdmin,
		Username:  admin.AdminUsername,
		Admin:     dto.FromAdmin(admin),
	})
}

// POST /api/admin/auth/logout
func (ctrl *AuthController) AdminLogout(c *fiber.Ctx) error {
	ctrl.clearSessionCookie(c, constants.RoleAdmin)
	return helper.JsonOK(c, "logged out", nil)
}

// POST /api/admin/auth/seed (non-production only)
func (ctrl *AuthController) AdminSeed(c *fiber.Ctx) error {
	var req dto.AdminCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	admin, err := ctrl.Accounts.CreateAdmin(c.UserContext(), req)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "admin created", dto.FromAdmin(admin))
}

/* ===================== CONTROLLER ===================== */

// POST /api/controller/auth/signup
func (ctrl *AuthController) ControllerSignup(c *fiber.Ctx) error {
	var req dto.ControllerSignupRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	created, err := ctrl.Accounts.Signup(c.UserContext(), req)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "signup received, waiting for admin approval", dto.FromController(created))
}

// POST /api/controller/auth/login
func (ctrl *AuthController) ControllerLogin(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := helper.ParseBody(c, &req); err != nil {
		return helper.JsonFromError(c, err)
	}
	acc, err := ctrl.Accounts.VerifyController(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	token, exp, err := ctrl.Issuer.Issue(session.ControllerSession{ControllerID: acc.ControllerID, Username: acc.ControllerUsername})
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	ctrl.setSessionCookie(c, constants.RoleController, token, exp)
	log.Info().Str("role", constants.RoleController).Str("actor_id", acc.ControllerID.String()).Msg("login")

	return helper.JsonOK(c, "login successful", dto.TokenResponse{
		Token:     token,
		ExpiresAt: exp,
		Role:      constants.RoleController,
		Username:  strings.TrimSpace(acc.ControllerUsername),
	})
}

// POST /api/controller/auth/logout
func (ctrl *AuthController) ControllerLogout(c *fiber.Ctx) error {
	ctrl.clearSessionCookie(c, constants.RoleController)
	return helper.JsonOK(c, "logged out", nil)
}

package controller

import (
	"strings"
	"time"

	"arcevents_backend/internals/constants"
	"arcevents_backend/internals/features/auth/identity"
	"arcevents_backend/internals/features/auth/session"
	helper "arcevents_backend/internals/helpers"
	authMw "arcevents_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type GoogleExchangeRequest struct {
	IDToken    string `json:"id_token"`
	Credential string `json:"credential"` // Google Identity Services button payload
}

type UserTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Role      string    `json:"role"`
	User      struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name,omitempty"`
		Picture string `json:"picture,omitempty"`
	} `json:"user"`
}

type TokenIssuer interface {
	Issue(s session.Session) (string, time.Time, error)
}

type GoogleAuthController struct {
	Verifier     identity.Verifier
	Issuer       TokenIssuer
	SecureCookie bool
}

func NewGoogleAuthController(v identity.Verifier, issuer TokenIssuer, secureCookie bool) *GoogleAuthController {
	return &GoogleAuthController{Verifier: v, Issuer: issuer, SecureCookie: secureCookie}
}

// POST /api/auth/google
func (ctrl *GoogleAuthController) Exchange(c *fiber.Ctx) error {
	var req GoogleExchangeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	raw := strings.TrimSpace(req.IDToken)
	if raw == "" {
		raw = strings.TrimSpace(req.Credential)
	}
	if raw == "" {
		return helper.JsonValidationError(c, map[string][]string{"id_token": {"id_token is required"}})
	}

	p, err := ctrl.Verifier.Verify(c.UserContext(), raw)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	us := session.UserSession{SubjectID: p.Subject, Email: p.Email, Name: p.Name, Picture: p.Picture}
	token, exp, err := ctrl.Issuer.Issue(us)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     authMw.CookieName(constants.RoleUser),
		Value:    token,
		Expires:  exp,
		HTTPOnly: true,
		Secure:   ctrl.SecureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	log.Info().Str("role", constants.RoleUser).Str("subject_id", p.Subject).Msg("user session issued")

	var out UserTokenResponse
	out.Token, out.ExpiresAt, out.Role = token, exp, constants.RoleUser
	out.User.Sub, out.User.Email, out.User.Name, out.User.Picture = p.Subject, p.Email, p.Name, p.Picture
	return helper.JsonOK(c, "login successful", out)
}

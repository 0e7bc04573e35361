// internals/middlewares/auth/claim_utils.go
package auth

import (
	"strings"

	"arcevents_backend/internals/constants"
	"arcevents_backend/internals/features/auth/session"
	"arcevents_backend/internals/helpers/apperror"

	"github.com/gofiber/fiber/v2"
)

const localsSession = "session"

// Cookie fallback per namespace so one browser can hold several roles.
var cookieByRole = map[string]string{
	constants.RoleAdmin:      "admin_access_token",
	constants.RoleController: "controller_access_token",
	constants.RoleUser:       "access_token",
}

func CookieName(role string) string {
	return cookieByRole[role]
}

/* ======== Extractors ======== */

// extractBearerToken reads "Authorization: Bearer x", falling back to the role's cookie.
func extractBearerToken(c *fiber.Ctx, role string) (string, error) {
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if auth == "" {
		if tok := strings.TrimSpace(c.Cookies(CookieName(role))); tok != "" {
			auth = "Bearer " + tok
		}
	}
	if auth == "" {
		return "", apperror.ErrUnauthenticated.WithMessage("no token provided")
	}

	// tolerate doubled spaces and lowercase scheme
	fields := strings.Fields(auth)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", apperror.ErrUnauthenticated.WithMessage("invalid authorization format")
	}
	tok := strings.Trim(strings.TrimSpace(fields[1]), "\"'")
	if tok == "" {
		return "", apperror.ErrUnauthenticated.WithMessage("empty token")
	}
	return tok, nil
}

func hasBearer(c *fiber.Ctx, role string) bool {
	return strings.TrimSpace(c.Get(fiber.HeaderAuthorization)) != "" ||
		strings.TrimSpace(c.Cookies(CookieName(role))) != ""
}

/* ======== Locals ======== */

func SessionFrom(c *fiber.Ctx) (session.Session, bool) {
	s, ok := c.Locals(localsSession).(session.Session)
	return s, ok && s != nil
}

func AdminFrom(c *fiber.Ctx) (session.AdminSession, error) {
	if s, ok := c.Locals(localsSession).(session.AdminSession); ok {
		return s, nil
	}
	return session.AdminSession{}, apperror.ErrUnauthenticated
}

func ControllerFrom(c *fiber.Ctx) (session.ControllerSession, error) {
	if s, ok := c.Locals(localsSession).(session.ControllerSession); ok {
		return s, nil
	}
	return session.ControllerSession{}, apperror.ErrUnauthenticated
}

func UserFrom(c *fiber.Ctx) (session.UserSession, error) {
	if s, ok := c.Locals(localsSession).(session.UserSession); ok {
		return s, nil
	}
	return session.UserSession{}, apperror.ErrUnauthenticated
}

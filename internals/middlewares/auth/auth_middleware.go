// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"context"
	"strings"

	"arcevents_backend/internals/constants"
	accountModel "arcevents_backend/internals/features/accounts/model"
	"arcevents_backend/internals/features/auth/session"
	helper "arcevents_backend/internals/helpers"
	"arcevents_backend/internals/helpers/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Fallback identity headers, honoured only when allowHeaders is on.
const (
	HeaderOAuthUID   = "X-OAuth-Uid"
	HeaderOAuthEmail = "X-OAuth-Email"
	HeaderOAuthName  = "X-OAuth-Name"
)

type Verifier interface {
	Verify(role, raw string) (session.Session, error)
}

type ControllerLookup interface {
	FindControllerByID(ctx context.Context, id uuid.UUID) (*accountModel.ControllerModel, error)
}

func verify(c *fiber.Ctx, v Verifier, role string) (session.Session, error) {
	raw, err := extractBearerToken(c, role)
	if err != nil {
		return nil, err
	}
	s, err := v.Verify(role, raw)
	if err != nil {
		log.Warn().
			Str("request_id", helper.RequestID(c)).
			Str("role", role).
			Str("path", c.Path()).
			Msg("session rejected")
		return nil, err
	}
	return s, nil
}

func RequireAdmin(v Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := verify(c, v, constants.RoleAdmin)
		if err != nil {
			return err
		}
		c.Locals(localsSession, s)
		return c.Next()
	}
}

// RequireController re-reads the account on every request: a revoked controller's
// unexpired token stops working immediately, and the event scope comes from the row.
func RequireController(v Verifier, accounts ControllerLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := verify(c, v, constants.RoleController)
		if err != nil {
			return err
		}
		cs, ok := s.(session.ControllerSession)
		if !ok {
			return apperror.ErrInvalidSession
		}

		ctrl, err := accounts.FindControllerByID(c.UserContext(), cs.ControllerID)
		if err != nil {
			if apperror.KindOf(err) == apperror.KindNotFound {
				return apperror.Forbidden("controller account no longer exists")
			}
			return err
		}
		if !ctrl.ControllerIsActive {
			log.Warn().
				Str("request_id", helper.RequestID(c)).
				Str("role", constants.RoleController).
				Str("actor_id", cs.ControllerID.String()).
				Msg("inactive controller rejected")
			return apperror.Forbidden(constants.RoleErrorController(c.Path()))
		}

		cs.Username = ctrl.ControllerUsername
		cs.ApprovedEvents = ctrl.ApprovedEventIDs()
		c.Locals(localsSession, cs)
		return c.Next()
	}
}

// RequireUser accepts a USER session token, or the X-OAuth-* header pair when allowHeaders is set.
func RequireUser(v Verifier, allowHeaders bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if hasBearer(c, constants.RoleUser) {
			s, err := verify(c, v, constants.RoleUser)
			if err != nil {
				return err
			}
			c.Locals(localsSession, s)
			return c.Next()
		}

		if allowHeaders {
			uid := strings.TrimSpace(c.Get(HeaderOAuthUID))
			email := strings.ToLower(strings.TrimSpace(c.Get(HeaderOAuthEmail)))
			if uid != "" && email != "" {
				c.Locals(localsSession, session.UserSession{
					SubjectID: uid,
					Email:     email,
					Name:      strings.TrimSpace(c.Get(HeaderOAuthName)),
				})
				return c.Next()
			}
		}
		return apperror.ErrUnauthenticated
	}
}

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"arcevents_backend/internals/constants"
	accountModel "arcevents_backend/internals/features/accounts/model"
	"arcevents_backend/internals/features/auth/session"
	helper "arcevents_backend/internals/helpers"
	"arcevents_backend/internals/helpers/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookup map[uuid.UUID]*accountModel.ControllerModel

func (l lookup) FindControllerByID(_ context.Context, id uuid.UUID) (*accountModel.ControllerModel, error) {
	if c, ok := l[id]; ok {
		return c, nil
	}
	return nil, apperror.NotFound("controller")
}

func issuer() *session.Issuer {
	return session.NewIssuer(
		session.Namespace{Secret: []byte("a"), TTL: time.Hour},
		session.Namespace{Secret: []byte("c"), TTL: time.Hour},
		session.Namespace{Secret: []byte("u"), TTL: time.Hour},
	)
}

func newApp(guard fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: helper.ErrorHandler})
	app.Get("/x", guard, func(c *fiber.Ctx) error {
		s, ok := SessionFrom(c)
		if !ok {
			return fiber.ErrTeapot
		}
		return c.SendString(s.Role() + ":" + s.Subject())
	})
	return app
}

func status(t *testing.T, app *fiber.App, req *http.Request) int {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRequireAdminHeaderAndCookie(t *testing.T) {
	iss := issuer()
	app := newApp(RequireAdmin(iss))
	tok, _, err := iss.Issue(session.AdminSession{AdminID: uuid.New()})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "bearer  "+tok)
	assert.Equal(t, fiber.StatusOK, status(t, app, req))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(&http.Cookie{Name: CookieName(constants.RoleAdmin), Value: tok})
	assert.Equal(t, fiber.StatusOK, status(t, app, req))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(&http.Cookie{Name: CookieName(constants.RoleUser), Value: tok})
	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, req), "another role's cookie is ignored")

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Basic abc")
	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, req))
}

func TestRequireControllerReadsAccount(t *testing.T) {
	iss := issuer()
	eventID := uuid.New()
	active := &accountModel.ControllerModel{
		ControllerID:             uuid.New(),
		ControllerUsername:       "gate",
		ControllerIsActive:       true,
		ControllerApprovedEvents: pq.StringArray{eventID.String()},
	}
	inactive := &accountModel.ControllerModel{ControllerID: uuid.New(), ControllerUsername: "late"}
	accounts := lookup{active.ControllerID: active, inactive.ControllerID: inactive}

	var seen session.ControllerSession
	app := fiber.New(fiber.Config{ErrorHandler: helper.ErrorHandler})
	app.Get("/x", RequireController(iss, accounts), func(c *fiber.Ctx) error {
		cs, err := ControllerFrom(c)
		if err != nil {
			return err
		}
		seen = cs
		return c.SendStatus(fiber.StatusNoContent)
	})

	call := func(id uuid.UUID) int {
		tok, _, err := iss.Issue(session.ControllerSession{ControllerID: id, Username: "stale"})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		return status(t, app, req)
	}

	assert.Equal(t, fiber.StatusNoContent, call(active.ControllerID))
	assert.Equal(t, "gate", seen.Username)
	assert.True(t, seen.CanSee(eventID))

	assert.Equal(t, fiber.StatusForbidden, call(inactive.ControllerID))
	assert.Equal(t, fiber.StatusForbidden, call(uuid.New()), "deleted account")
}

func TestRequireUserHeaders(t *testing.T) {
	iss := issuer()

	req := func() *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/x", nil)
		r.Header.Set(HeaderOAuthUID, "sub-1")
		r.Header.Set(HeaderOAuthEmail, "a@b.org")
		return r
	}
	assert.Equal(t, fiber.StatusOK, status(t, newApp(RequireUser(iss, true)), req()))
	assert.Equal(t, fiber.StatusUnauthorized, status(t, newApp(RequireUser(iss, false)), req()))

	tok, _, err := iss.Issue(session.UserSession{SubjectID: "sub-2", Email: "c@d.org"})
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	assert.Equal(t, fiber.StatusOK, status(t, newApp(RequireUser(iss, false)), r))
}

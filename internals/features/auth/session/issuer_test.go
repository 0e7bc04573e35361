package session

import (
	"testing"
	"time"

	"arcevents_backend/internals/constants"
	"arcevents_backend/internals/helpers/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestIssuer(c *clock) *Issuer {
	return NewIssuer(
		Namespace{Secret: []byte("admin-secret"), TTL: 2 * time.Hour},
		Namespace{Secret: []byte("controller-secret"), TTL: 10 * time.Hour},
		Namespace{Secret: []byte("user-secret"), TTL: 7 * 24 * time.Hour},
	).WithClock(c.now)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	c := &clock{t: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)}
	iss := newTestIssuer(c)

	admin := AdminSession{AdminID: uuid.New(), Username: "root@arc.edu"}
	tok, exp, err := iss.Issue(admin)
	require.NoError(t, err)
	assert.True(t, exp.Equal(c.t.Add(2*time.Hour)))

	got, err := iss.Verify(constants.RoleAdmin, tok)
	require.NoError(t, err)
	assert.Equal(t, admin, got)

	user := UserSession{SubjectID: "google-42", Email: "a@b.org", Name: "Alum"}
	tok, _, err = iss.Issue(user)
	require.NoError(t, err)
	got, err = iss.Verify(constants.RoleUser, tok)
	require.NoError(t, err)
	assert.Equal(t, user, got)

	ctl := ControllerSession{ControllerID: uuid.New(), Username: "gate", ApprovedEvents: []uuid.UUID{uuid.New()}}
	tok, _, err = iss.Issue(ctl)
	require.NoError(t, err)
	got, err = iss.Verify(constants.RoleController, tok)
	require.NoError(t, err)
	cs, ok := got.(ControllerSession)
	require.True(t, ok)
	assert.Equal(t, ctl.ControllerID, cs.ControllerID)
	assert.Empty(t, cs.ApprovedEvents, "scope never travels in the token")
}

func TestNamespacesAreIsolated(t *testing.T) {
	iss := newTestIssuer(&clock{t: time.Now()})

	tok, _, err := iss.Issue(AdminSession{AdminID: uuid.New()})
	require.NoError(t, err)

	for _, role := range []string{constants.RoleController, constants.RoleUser} {
		_, err := iss.Verify(role, tok)
		assert.Equal(t, apperror.KindInvalidSession, apperror.KindOf(err), role)
	}
}

func TestRoleClaimMustMatchEvenWithSharedSecret(t *testing.T) {
	shared := Namespace{Secret: []byte("same"), TTL: time.Hour}
	iss := NewIssuer(shared, shared, shared)

	tok, _, err := iss.Issue(UserSession{SubjectID: uuid.NewString()})
	require.NoError(t, err)
	_, err = iss.Verify(constants.RoleAdmin, tok)
	assert.ErrorIs(t, err, apperror.ErrInvalidSession)
}

func TestExpiry(t *testing.T) {
	c := &clock{t: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)}
	iss := newTestIssuer(c)

	tok, _, err := iss.Issue(AdminSession{AdminID: uuid.New()})
	require.NoError(t, err)

	c.t = c.t.Add(2*time.Hour - time.Second)
	_, err = iss.Verify(constants.RoleAdmin, tok)
	assert.NoError(t, err)

	c.t = c.t.Add(2 * time.Second)
	_, err = iss.Verify(constants.RoleAdmin, tok)
	assert.Equal(t, apperror.KindInvalidSession, apperror.KindOf(err))
}

func TestVerifyRejectsGarbage(t *testing.T) {
	iss := newTestIssuer(&clock{t: time.Now()})
	for _, raw := range []string{"", "abc", "a.b.c"} {
		_, err := iss.Verify(constants.RoleUser, raw)
		assert.Equal(t, apperror.KindInvalidSession, apperror.KindOf(err), raw)
	}

	tok, _, err := iss.Issue(UserSession{SubjectID: "s"})
	require.NoError(t, err)
	_, err = iss.Verify(constants.RoleUser, tok+"x")
	assert.Equal(t, apperror.KindInvalidSession, apperror.KindOf(err))
}

func TestIssueWithoutSecretFails(t *testing.T) {
	iss := NewIssuer(Namespace{}, Namespace{}, Namespace{})
	_, _, err := iss.Issue(AdminSession{AdminID: uuid.New()})
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
}

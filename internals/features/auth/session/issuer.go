package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"arcevents_backend/internals/constants"
	"arcevents_backend/internals/helpers/apperror"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Namespace is one role's signing secret and lifetime.
type Namespace struct {
	Secret []byte
	TTL    time.Duration
}

type Claims struct {
	Role     string `json:"role"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Picture  string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

type Issuer struct {
	namespaces map[string]Namespace
	now        func() time.Time
}

func NewIssuer(admin, controller, user Namespace) *Issuer {
	return &Issuer{
		namespaces: map[string]Namespace{
			constants.RoleAdmin:      admin,
			constants.RoleController: controller,
			constants.RoleUser:       user,
		},
		now: time.Now,
	}
}

// WithClock swaps the time source (tests).
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

func (i *Issuer) TTL(role string) time.Duration {
	return i.namespaces[role].TTL
}

// Issue signs s in its role's namespace and returns the token with its expiry.
func (i *Issuer) Issue(s Session) (string, time.Time, error) {
	if s == nil {
		return "", time.Time{}, apperror.Internal("cannot issue empty session", nil)
	}
	ns, ok := i.namespaces[s.Role()]
	if !ok || len(ns.Secret) == 0 || ns.TTL <= 0 {
		return "", time.Time{}, apperror.Internal("session namespace not configured", fmt.Errorf("role %s", s.Role()))
	}

	now := i.now()
	exp := now.Add(ns.TTL)
	claims := Claims{
		Role: s.Role(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.Subject(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	switch v := s.(type) {
	case AdminSession:
		claims.Username = v.Username
	case ControllerSession:
		// approved events are reloaded per request, never trusted from the token
		claims.Username = v.Username
	case UserSession:
		claims.Email = v.Email
		claims.Name = v.Name
		claims.Picture = v.Picture
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ns.Secret)
	if err != nil {
		return "", time.Time{}, apperror.Internal("sign session", err)
	}
	return token, claims.ExpiresAt.Time, nil
}

// Verify checks signature, expiry and namespace. Any failure is InvalidSession.
func (i *Issuer) Verify(role, raw string) (Session, error) {
	ns, ok := i.namespaces[role]
	if !ok || len(ns.Secret) == 0 {
		return nil, apperror.ErrInvalidSession
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperror.ErrInvalidSession
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	claims := &Claims{}
	if _, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return ns.Secret, nil
	}); err != nil {
		return nil, apperror.ErrInvalidSession.WithErr(err)
	}
	if !claims.VerifyExpiresAt(i.now(), true) {
		return nil, apperror.ErrInvalidSession.WithMessage("session expired")
	}
	if claims.Role != role {
		return nil, apperror.ErrInvalidSession.WithErr(errors.New("role mismatch"))
	}
	return claimsToSession(claims)
}

func claimsToSession(c *Claims) (Session, error) {
	switch c.Role {
	case constants.RoleAdmin:
		id, err := uuid.Parse(c.Subject)
		if err != nil {
			return nil, apperror.ErrInvalidSession.WithErr(err)
		}
		return AdminSession{AdminID: id, Username: c.Username}, nil
	case constants.RoleController:
		id, err := uuid.Parse(c.Subject)
		if err != nil {
			return nil, apperror.ErrInvalidSession.WithErr(err)
		}
		return ControllerSession{ControllerID: id, Username: c.Username}, nil
	case constants.RoleUser:
		if strings.TrimSpace(c.Subject) == "" {
			return nil, apperror.ErrInvalidSession.WithErr(errors.New("missing subject"))
		}
		return UserSession{SubjectID: c.Subject, Email: c.Email, Name: c.Name, Picture: c.Picture}, nil
	}
	return nil, apperror.ErrInvalidSession
}

// Package identity turns a third-party ID token into a verified principal.
package identity

import (
	"context"
	"errors"
	"strings"

	"arcevents_backend/internals/helpers/apperror"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
)

type Principal struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

type Verifier interface {
	Verify(ctx context.Context, idToken string) (Principal, error)
}

type GoogleVerifier struct {
	ClientID string
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{ClientID: strings.TrimSpace(clientID)}
}

// Verify checks the token against Google's certs and the configured audience.
// The picture claim is not read; Principal.Picture stays empty.
func (g *GoogleVerifier) Verify(_ context.Context, idToken string) (Principal, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return Principal{}, apperror.ErrInvalidCredentials.WithMessage("id token is required")
	}
	if g.ClientID == "" {
		return Principal{}, apperror.Internal("google client id not configured", nil)
	}

	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, []string{g.ClientID}); err != nil {
		return Principal{}, apperror.ErrInvalidCredentials.WithMessage("invalid google id token").WithErr(err)
	}
	claimSet, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return Principal{}, apperror.ErrInvalidCredentials.WithMessage("invalid google id token").WithErr(err)
	}
	if strings.TrimSpace(claimSet.Sub) == "" {
		return Principal{}, apperror.ErrInvalidCredentials.WithErr(errors.New("token has no subject"))
	}
	return Principal{
		Subject: claimSet.Sub,
		Email:   strings.ToLower(strings.TrimSpace(claimSet.Email)),
		Name:    strings.TrimSpace(claimSet.Name),
	}, nil
}

// StaticVerifier accepts a fixed token table (local dev and tests).
type StaticVerifier map[string]Principal

func (s StaticVerifier) Verify(_ context.Context, idToken string) (Principal, error) {
	p, ok := s[strings.TrimSpace(idToken)]
	if !ok {
		return Principal{}, apperror.ErrInvalidCredentials.WithMessage("invalid id token")
	}
	return p, nil
}

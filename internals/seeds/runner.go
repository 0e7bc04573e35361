package seeds

import (
	"context"
	"strings"

	"arcevents_backend/internals/features/accounts/dto"
	"arcevents_backend/internals/helpers/apperror"

	"github.com/rs/zerolog/log"
)

// AdminSeed is the bootstrap admin read from SEED_ADMIN_USERNAME / SEED_ADMIN_PASSWORD.
type AdminSeed struct {
	Username string
	Password string
}

// RunAllSeeds creates the bootstrap admin. An existing username is not an error.
func RunAllSeeds(ctx context.Context, create func(ctx context.Context, req dto.AdminCreateRequest) error, seed AdminSeed) error {
	if strings.TrimSpace(seed.Username) == "" || seed.Password == "" {
		log.Info().Msg("no seed admin configured, skipping")
		return nil
	}
	err := create(ctx, dto.AdminCreateRequest{Username: seed.Username, Password: seed.Password})
	switch {
	case err == nil:
		log.Info().Str("username", strings.ToLower(strings.TrimSpace(seed.Username))).Msg("seed admin created")
		return nil
	case apperror.KindOf(err) == apperror.KindConflict:
		log.Info().Msg("seed admin already present")
		return nil
	default:
		return err
	}
}

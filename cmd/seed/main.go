// Command seed migrates the schema and creates the bootstrap admin account.
package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"arcevents_backend/internals/configs"
	database "arcevents_backend/internals/databases"
	accountDTO "arcevents_backend/internals/features/accounts/dto"
	accountRepo "arcevents_backend/internals/features/accounts/repository"
	accountService "arcevents_backend/internals/features/accounts/service"
	"arcevents_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()
	configs.InitLogger()

	db := configs.InitSeederDB()
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	accounts := accountService.NewAccountService(accountRepo.NewAccountRepository(db))
	seed := seeds.AdminSeed{Username: configs.SeedAdminUsername, Password: configs.SeedAdminPassword}
	err := seeds.RunAllSeeds(context.Background(), func(ctx context.Context, req accountDTO.AdminCreateRequest) error {
		_, err := accounts.CreateAdmin(ctx, req)
		return err
	}, seed)
	if err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}
	log.Info().Msg("seeding done")
}

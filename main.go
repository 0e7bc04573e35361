package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"arcevents_backend/internals/configs"
	database "arcevents_backend/internals/databases"
	accountDTO "arcevents_backend/internals/features/accounts/dto"
	accountRepo "arcevents_backend/internals/features/accounts/repository"
	accountService "arcevents_backend/internals/features/accounts/service"
	"arcevents_backend/internals/features/auth/identity"
	"arcevents_backend/internals/features/auth/session"
	helper "arcevents_backend/internals/helpers"
	helperOSS "arcevents_backend/internals/helpers/oss"
	middlewares "arcevents_backend/internals/middlewares"
	routes "arcevents_backend/internals/route"
	"arcevents_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()
	configs.InitLogger()

	app := fiber.New(fiber.Config{
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		ErrorHandler:            helper.ErrorHandler,
		BodyLimit:               configs.MaxUploadBytes + 1024*1024, // multipart overhead
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
	})

	// request budget covers one blob upload plus the surrounding queries
	middlewares.SetupMiddlewares(app, configs.CorsOrigins, configs.UploadTimeout+10*time.Second)

	database.ConnectDB()
	database.TunePool()
	if err := database.Migrate(database.DB); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	database.WarmUpQueries()

	if configs.SeedOnBoot {
		accounts := accountService.NewAccountService(accountRepo.NewAccountRepository(database.DB))
		err := seeds.RunAllSeeds(context.Background(), func(ctx context.Context, req accountDTO.AdminCreateRequest) error {
			_, err := accounts.CreateAdmin(ctx, req)
			return err
		}, seeds.AdminSeed{Username: configs.SeedAdminUsername, Password: configs.SeedAdminPassword})
		if err != nil {
			log.Fatal().Err(err).Msg("seeding failed")
		}
	}

	routes.SetupRoutes(app, database.DB, routes.Deps{
		Blobs: newBlobStore(),
		Issuer: session.NewIssuer(
			session.Namespace{Secret: []byte(configs.AdminJWTSecret), TTL: configs.AdminSessionTTL},
			session.Namespace{Secret: []byte(configs.ControllerJWTSecret), TTL: configs.ControllerSessionTTL},
			session.Namespace{Secret: []byte(configs.UserJWTSecret), TTL: configs.UserSessionTTL},
		),
		Identity:             identity.NewGoogleVerifier(configs.GoogleClientID),
		Limits:               helperOSS.UploadLimits{MaxBytes: int64(configs.MaxUploadBytes), MaxSide: configs.MaxImageSide},
		UploadTimeout:        configs.UploadTimeout,
		AllowIdentityHeaders: configs.AllowIdentityHeaders,
		AllowSeed:            !configs.IsProduction(),
		SecureCookie:         configs.IsProduction(),
		BcryptCost:           bcrypt.DefaultCost,
	})

	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := configs.GetEnv("PORT", "3000")

	go func() {
		log.Info().Str("port", port).Msg("listening")
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown + close DB pool
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// newBlobStore returns the OSS client, or an in-memory store outside production when OSS is unset.
func newBlobStore() helperOSS.BlobStore {
	oss, err := helperOSS.NewOSSServiceFromEnv()
	if err == nil {
		return oss
	}
	if errors.Is(err, helperOSS.ErrOSSNotConfigured) && !configs.IsProduction() {
		log.Warn().Msg("OSS not configured, uploads are kept in memory")
		return helperOSS.NewMemoryBlobStore()
	}
	log.Fatal().Err(err).Msg("blob store init failed")
	return nil
}

package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"arcevents_backend/internals/configs"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	log.Info().Msg("🔌 connecting to PostgreSQL...")

	// PgBouncer (transaction pooling) needs PreferSimpleProtocol
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=arcevents&options=-c statement_timeout=5000",
		configs.GetEnv("DB_USER"),
		configs.GetEnv("DB_PASSWORD"),
		configs.GetEnv("DB_HOST"),
		configs.GetEnv("DB_PORT", "5432"),
		configs.GetEnv("DB_NAME"),
		configs.GetEnv("DB_SSLMODE", "require"),
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:         configs.NewGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("❌ database connection failed")
	}
	DB = db
	log.Info().Msg("✅ DB connected")
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Warn().Err(err).Msg("pool tune")
		return
	}
	sqlDB.SetMaxOpenConns(configs.GetEnvInt("DB_MAX_OPEN_CONNS", 20))
	sqlDB.SetMaxIdleConns(configs.GetEnvInt("DB_MAX_IDLE_CONNS", 10))
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func WarmUpQueries() {
	go func() {
		time.Sleep(500 * time.Millisecond)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := Ping(ctx, DB); err != nil {
			log.Warn().Err(err).Msg("warm-up ping")
		}
	}()
}

func Ping(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("database not initialised")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// IsUniqueViolation reports a unique-index conflict (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "sqlstate 23505")
}

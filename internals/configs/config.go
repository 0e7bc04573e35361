package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	AppEnv string

	AdminJWTSecret      string
	ControllerJWTSecret string
	UserJWTSecret       string

	AdminSessionTTL      time.Duration
	ControllerSessionTTL time.Duration
	UserSessionTTL       time.Duration

	GoogleClientID string

	// Fallback X-OAuth-Uid / X-OAuth-Email headers for the USER role. Never honoured in production.
	AllowIdentityHeaders bool

	MaxUploadBytes int
	UploadTimeout  time.Duration
	MaxImageSide   int

	CorsOrigins []string

	SeedOnBoot        bool
	SeedAdminUsername string
	SeedAdminPassword string
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Info().Msg("no .env file found, using system environment")
		} else {
			log.Info().Msg(".env file loaded")
		}
	} else {
		log.Info().Msg("running on Railway, using system environment")
	}

	AppEnv = strings.ToLower(GetEnv("APP_ENV", "development"))

	AdminJWTSecret = GetEnv("ADMIN_JWT_SECRET")
	ControllerJWTSecret = GetEnv("CONTROLLER_JWT_SECRET")
	UserJWTSecret = GetEnv("USER_JWT_SECRET")

	AdminSessionTTL = GetEnvDuration("ADMIN_SESSION_TTL", 2*time.Hour)
	ControllerSessionTTL = GetEnvDuration("CONTROLLER_SESSION_TTL", 10*time.Hour)
	UserSessionTTL = GetEnvDuration("USER_SESSION_TTL", 7*24*time.Hour)

	GoogleClientID = GetEnv("GOOGLE_CLIENT_ID")
	AllowIdentityHeaders = !IsProduction() && GetEnvBool("ALLOW_IDENTITY_HEADERS", false)

	MaxUploadBytes = GetEnvInt("MAX_UPLOAD_BYTES", 10*1024*1024)
	UploadTimeout = GetEnvDuration("UPLOAD_TIMEOUT", 20*time.Second)
	MaxImageSide = GetEnvInt("MAX_IMAGE_SIDE", 8000)

	CorsOrigins = splitCSV(GetEnv("CORS_ORIGINS", "http://localhost:5173"))

	SeedOnBoot = GetEnvBool("SEED_ON_BOOT", false)
	SeedAdminUsername = GetEnv("SEED_ADMIN_USERNAME")
	SeedAdminPassword = GetEnv("SEED_ADMIN_PASSWORD")

	for name, v := range map[string]string{
		"ADMIN_JWT_SECRET":      AdminJWTSecret,
		"CONTROLLER_JWT_SECRET": ControllerJWTSecret,
		"USER_JWT_SECRET":       UserJWTSecret,
		"GOOGLE_CLIENT_ID":      GoogleClientID,
	} {
		if v == "" {
			log.Warn().Str("key", name).Msg("env not set")
		}
	}
}

func IsProduction() bool {
	return AppEnv == "production" || AppEnv == "prod"
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return strings.TrimSpace(value)
}

func GetEnvBool(key string, def bool) bool {
	if v := GetEnv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func GetEnvInt(key string, def int) int {
	if v := GetEnv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func GetEnvDuration(key string, def time.Duration) time.Duration {
	if v := GetEnv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// =======================
// DATABASE CONNECTOR
// =======================
func InitSeederDB() *gorm.DB {
	dsn := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		GetEnv("DB_USER"), GetEnv("DB_PASSWORD"), GetEnv("DB_HOST"),
		GetEnv("DB_PORT"), GetEnv("DB_NAME"), GetEnv("DB_SSLMODE", "require"))

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:         NewGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seeder database connection failed")
	}
	log.Info().Msg("seeder database connected")
	return db
}

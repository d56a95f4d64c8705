package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	CurrencyAPIKey string
	TokenAPI       string
	Port           string
	GinMode        string
	LogLevel       string
	LogJSON        bool
	UploadDir      string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Official/admin login
	AdminUser         string
	AdminPasswordHash string
}

// ErrMissingToken indicates a required token is not configured
var ErrMissingToken = errors.New("required token not configured")

// Load reads configuration from the environment
func Load() (*Config, error) {
	// Try .env from both the service dir and the repo root
	_ = godotenv.Load()
	_ = godotenv.Load("../.env")

	cfg := &Config{
		CurrencyAPIKey:    os.Getenv("CURRENCY_API_KEY"),
		TokenAPI:          os.Getenv("TOKEN_API"),
		Port:              os.Getenv("PORT"),
		GinMode:           os.Getenv("GIN_MODE"),
		LogLevel:          os.Getenv("LOG_LEVEL"),
		LogJSON:           os.Getenv("LOG_JSON") != "false",
		UploadDir:         os.Getenv("UPLOAD_DIR"),
		DBHost:            os.Getenv("DB_HOST"),
		DBPort:            os.Getenv("DB_PORT"),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            os.Getenv("DB_NAME"),
		DBSSLMode:         os.Getenv("DB_SSLMODE"),
		AdminUser:         os.Getenv("ADMIN_USER"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
	}

	// TOKEN_API protects every mutating endpoint; refuse to start without it.
	// CURRENCY_API_KEY is deliberately not validated: without it every
	// conversion falls back to the USD amount, which is the documented
	// degraded mode, not a startup failure.
	if cfg.TokenAPI == "" {
		return nil, errors.New("TOKEN_API not configured")
	}

	// Defaults
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.GinMode == "" {
		cfg.GinMode = "debug"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "./uploads"
	}
	if cfg.DBHost == "" {
		cfg.DBHost = "localhost"
	}
	if cfg.DBPort == "" {
		cfg.DBPort = "5432"
	}
	if cfg.DBUser == "" {
		cfg.DBUser = "civicfix"
	}
	if cfg.DBName == "" {
		cfg.DBName = "civicfix"
	}
	if cfg.DBSSLMode == "" {
		cfg.DBSSLMode = "disable"
	}

	return cfg, nil
}

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	wompiSandboxURL    = "https://sandbox.wompi.co/v1"
	wompiProductionURL = "https://production.wompi.co/v1"
)

// Config holds everything the service reads from the environment. It is built
// once in main and handed to the components that need it; business logic never
// reads env vars directly.
type Config struct {
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBPort      string
	DatabaseURL string

	AppPort    string
	AppEnv     string
	BaseURL    string
	CORSOrigin string
	JWTSecret  string

	// Wompi credentials. Public key authenticates read-only calls, private key
	// authenticates transaction creation, the integrity secret signs payloads
	// and the event secret authenticates webhooks.
	WompiPublicKey       string
	WompiPrivateKey      string
	WompiEventSecret     string
	WompiIntegritySecret string
	WompiEnv             string
	WompiAPIURL          string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:      os.Getenv("DB_HOST"),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      os.Getenv("DB_NAME"),
		DBPort:      getenvDefault("DB_PORT", "5432"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		AppPort:    getenvDefault("APP_PORT", "3000"),
		AppEnv:     os.Getenv("APP_ENV"),
		BaseURL:    getenvDefault("BASE_URL", "http://127.0.0.1:3000"),
		CORSOrigin: getenvDefault("CORS_ORIGIN", "*"),
		JWTSecret:  os.Getenv("JWT_SECRET"),

		WompiPublicKey:       os.Getenv("WOMPI_PUBLIC_KEY"),
		WompiPrivateKey:      os.Getenv("WOMPI_PRIVATE_KEY"),
		WompiEventSecret:     os.Getenv("WOMPI_EVENT_SECRET"),
		WompiIntegritySecret: os.Getenv("WOMPI_INTEGRITY_SECRET"),
		WompiEnv:             getenvDefault("WOMPI_ENV", "sandbox"),
	}

	if cfg.WompiEnv == "production" {
		cfg.WompiAPIURL = wompiProductionURL
	} else {
		cfg.WompiAPIURL = wompiSandboxURL
	}

	if cfg.DatabaseURL == "" && cfg.DBHost == "" {
		return nil, fmt.Errorf("database not configured: set DATABASE_URL or DB_HOST")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	var missing []string
	if cfg.WompiPublicKey == "" {
		missing = append(missing, "WOMPI_PUBLIC_KEY")
	}
	if cfg.WompiPrivateKey == "" {
		missing = append(missing, "WOMPI_PRIVATE_KEY")
	}
	if cfg.WompiEventSecret == "" {
		missing = append(missing, "WOMPI_EVENT_SECRET")
	}
	if cfg.WompiIntegritySecret == "" {
		missing = append(missing, "WOMPI_INTEGRITY_SECRET")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing Wompi variables: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

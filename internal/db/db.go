package db

import (
	"database/sql"
	"fmt"

	"tienda-be/internal/config"

	_ "github.com/lib/pq"
)

// Open connects to PostgreSQL using DATABASE_URL when set (hosted
// deployments) or the individual DB_* variables otherwise.
func Open(cfg *config.Config) (*sql.DB, error) {
	dsn := cfg.DatabaseURL
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
		)
	}

	database, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return database, nil
}

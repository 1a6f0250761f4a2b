package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"star_studio/internal/logging"
	"star_studio/internal/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// DBConfig holds database connection parameters
type DBConfig struct {
	DSN string
}

// LoadDBConfig loads database configuration from environment variables
func LoadDBConfig() (*DBConfig, error) {
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	if dbHost == "" || dbPort == "" || dbUser == "" || dbName == "" {
		return nil, fmt.Errorf("database environment variables not set (DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME)")
	}

	sslMode := os.Getenv("DB_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbHost, dbPort, dbUser, dbPassword, dbName, sslMode)

	return &DBConfig{DSN: dsn}, nil
}

// ConnectDB establishes a connection to the PostgreSQL database
func ConnectDB(ctx context.Context, cfg *DBConfig, logger logging.Logger) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	var err error

	maxRetries := 5
	retryInterval := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		pool, err = pgxpool.New(ctx, cfg.DSN)
		if err == nil {
			err = pool.Ping(ctx)
			if err == nil {
				logger.Info(ctx, "connected to PostgreSQL")
				return pool, nil
			}
			pool.Close()
		}
		logger.Warn(ctx, "failed to connect to database",
			"attempt", i+1, "max_attempts", maxRetries, "retry_in", retryInterval.String(), "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", maxRetries, err)
}

// AutoMigrate applies the embedded goose migrations
func AutoMigrate(ctx context.Context, pool *pgxpool.Pool, logger logging.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("unable to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("unable to apply migrations: %w", err)
	}

	logger.Info(ctx, "migrations applied")
	return nil
}

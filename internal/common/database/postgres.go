// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"visa-portal/internal/common/config"

	_ "github.com/lib/pq"
)

// PostgresClient wraps the connection to the hosted relational backend.
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres opens a PostgreSQL pool. It does not dial; call Ping to verify.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("postgres: host, database and user must be set")
	}

	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// GetDB returns the underlying *sql.DB, nil-safe.
func (c *PostgresClient) GetDB() *sql.DB {
	if c == nil {
		return nil
	}
	return c.DB
}

// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"qris-workers/internal/common/config"

	_ "github.com/lib/pq"
)

// PaymentCodesDDL creates the table the payment workers read and write.
const PaymentCodesDDL = `CREATE TABLE IF NOT EXISTS payment_codes (
	order_id       TEXT PRIMARY KEY,
	amount         BIGINT NOT NULL CHECK (amount >= 0),
	payload        TEXT NOT NULL,
	checksum       CHAR(4) NOT NULL,
	payment_status TEXT NOT NULL DEFAULT 'unpaid',
	status_note    TEXT,
	confirmed_by   TEXT,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresClient wraps the SQL database connection
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres creates a new PostgreSQL client
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
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

// EnsureSchema applies PaymentCodesDDL.
func (c *PostgresClient) EnsureSchema(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, PaymentCodesDDL); err != nil {
		return fmt.Errorf("create payment_codes: %w", err)
	}
	return nil
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

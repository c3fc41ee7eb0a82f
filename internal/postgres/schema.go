package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id       TEXT PRIMARY KEY,
		email    TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id    TEXT PRIMARY KEY,
		name  TEXT NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		stock INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		seq        BIGSERIAL PRIMARY KEY,
		id         TEXT NOT NULL UNIQUE,
		product    JSONB NOT NULL,
		qty        INTEGER NOT NULL,
		"user"     JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE SEQUENCE IF NOT EXISTS users_id_seq`,
	`CREATE SEQUENCE IF NOT EXISTS products_id_seq`,
	`CREATE SEQUENCE IF NOT EXISTS orders_id_seq`,
}

// Migrate creates the tables and id sequences if they are missing.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

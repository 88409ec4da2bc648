// Package migration holds the goose Go migrations for the PostgreSQL store.
package migration

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

// DefaultDir is where the migration sources live relative to the repo root.
const DefaultDir = "internal/migration"

func Up(ctx context.Context, db *sql.DB, dir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, dir)
}

func Down(ctx context.Context, db *sql.DB, dir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return goose.DownContext(ctx, db, dir)
}

func Status(ctx context.Context, db *sql.DB, dir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return goose.StatusContext(ctx, db, dir)
}

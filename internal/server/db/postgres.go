// Package db opens the server database (PostgreSQL via the pgx stdlib
// driver) and applies the embedded goose migrations.
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/docsnap/docsnap/internal/server/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the given database handle.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}

	return nil
}

// Open connects to the database at dsn and brings the schema up to date.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := RunMigrations(ctx, conn); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return conn, nil
}

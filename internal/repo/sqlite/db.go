// Package sqlite is the embedded user store used for local runs and
// hermetic tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "modernc.org/sqlite"

	"github.com/talx-hub/gopher-users/internal/migrations"
	"github.com/talx-hub/gopher-users/internal/model"
)

const (
	driverName   = "sqlite"
	schemePrefix = "sqlite://"
	memoryDSN    = ":memory:"
)

// Open opens (or creates) the database behind dsn and applies the bundled
// migrations. dsn is either "sqlite://<path>", a "file:" URI or a plain path.
// The returned handle holds a single connection.
func Open(ctx context.Context, dsn string, log *slog.Logger) (*sql.DB, error) {
	path := strings.TrimPrefix(dsn, schemePrefix)
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err = db.ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
		return nil, errors.Join(
			fmt.Errorf("failed to enable foreign keys: %w", err),
			db.Close())
	}

	if err = applyMigrations(db, log); err != nil {
		return nil, errors.Join(err, db.Close())
	}

	log.LogAttrs(ctx, slog.LevelInfo, "sqlite store ready", slog.String("path", path))
	return db, nil
}

func ensureDir(path string) error {
	if path == memoryDSN || strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create db dir: %w", err)
	}
	return nil
}

// applyMigrations runs the embedded sqlite migrations on db. The migrate
// instance is not closed since closing it closes db.
func applyMigrations(db *sql.DB, log *slog.Logger) error {
	src, err := migrations.Source(migrations.DialectSQLite)
	if err != nil {
		return fmt.Errorf("failed to init migrations source: %w", err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.LogAttrs(context.TODO(),
				slog.LevelWarn,
				"failed to close migrations source",
				slog.Any(model.KeyLoggerError, err),
			)
		}
	}()

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to init migrations driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driverName, driver)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

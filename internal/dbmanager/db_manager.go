package dbmanager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // registers pgx5:// for migrate
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talx-hub/gopher-users/internal/migrations"
	"github.com/talx-hub/gopher-users/internal/model"
	"github.com/talx-hub/gopher-users/internal/observability"
	"github.com/talx-hub/gopher-users/internal/serviceerrs"
)

// DBManager owns the pgx pool. Its methods chain; the first failure sticks
// and is reported by Error, later steps become no-ops.
type DBManager struct {
	log     *slog.Logger
	metrics *observability.Metrics
	pool    *pgxpool.Pool
	err     error
	dsn     string
}

func New(dsn string, log *slog.Logger) *DBManager {
	return &DBManager{
		log:  log,
		pool: nil,
		err:  nil,
		dsn:  dsn,
	}
}

func (m *DBManager) WithMetrics(metrics *observability.Metrics) *DBManager {
	m.metrics = metrics
	return m
}

func (m *DBManager) Connect(ctx context.Context) *DBManager {
	if m.err != nil {
		return m
	}

	cfg, err := pgxpool.ParseConfig(m.dsn)
	if err != nil {
		return m.fail(ctx, "failed to parse DSN", err)
	}
	cfg.ConnConfig.Tracer = &queryTracer{log: m.log, metrics: m.metrics}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return m.fail(ctx, "failed to init pgxpool", err)
	}
	m.pool = pool

	return m.Ping(ctx)
}

func (m *DBManager) Ping(ctx context.Context) *DBManager {
	if m.err != nil {
		return m
	}
	if m.pool == nil {
		return m.fail(ctx, "failed to ping the DB", serviceerrs.ErrNotConnected)
	}

	if err := m.pool.Ping(ctx); err != nil {
		return m.fail(ctx, "failed to ping the DB", err)
	}
	return m
}

func (m *DBManager) ApplyMigrations(ctx context.Context) *DBManager {
	if m.err != nil {
		return m
	}

	migrateURL, err := toMigrateURL(m.dsn)
	if err != nil {
		return m.fail(ctx, "failed to build migrations URL", err)
	}

	src, err := migrations.Source(migrations.DialectPostgres)
	if err != nil {
		return m.fail(ctx, "failed to load migrations", err)
	}

	mg, err := migrate.NewWithSourceInstance("iofs", src, migrateURL)
	if err != nil {
		return m.fail(ctx, "failed to init migrations", err)
	}
	defer func() {
		srcErr, dbErr := mg.Close()
		if closeErr := errors.Join(srcErr, dbErr); closeErr != nil {
			m.log.LogAttrs(ctx,
				slog.LevelWarn,
				"failed to close migrations",
				slog.Any(model.KeyLoggerError, closeErr),
			)
		}
	}()

	if err = mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return m.fail(ctx, "failed to apply migrations", err)
	}

	m.log.LogAttrs(ctx, slog.LevelInfo, "migrations applied")
	return m
}

func (m *DBManager) Error() error {
	return m.err
}

func (m *DBManager) GetPool(ctx context.Context) (*pgxpool.Pool, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.pool == nil {
		return nil, serviceerrs.ErrNotConnected
	}
	return m.pool, nil
}

// PingContext lets the manager serve as a health probe.
func (m *DBManager) PingContext(ctx context.Context) error {
	if m.pool == nil {
		return serviceerrs.ErrNotConnected
	}
	if err := m.pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping the DB: %w", err)
	}
	return nil
}

func (m *DBManager) Close() {
	if m.pool == nil {
		return
	}

	m.pool.Close()
	m.log.LogAttrs(context.TODO(),
		slog.LevelInfo,
		"connection to DB closed",
	)
}

func (m *DBManager) fail(ctx context.Context, msg string, err error) *DBManager {
	m.log.LogAttrs(ctx,
		slog.LevelError,
		msg,
		slog.Any(model.KeyLoggerError, err),
	)
	m.err = fmt.Errorf("%s: %w", msg, err)
	return m
}

func toMigrateURL(dsn string) (string, error) {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, scheme) {
			return "pgx5://" + strings.TrimPrefix(dsn, scheme), nil
		}
	}
	return "", fmt.Errorf("DSN must be a postgres:// URL, got %q", redact(dsn))
}

func redact(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at < 0 {
		return dsn
	}
	return "***" + dsn[at:]
}

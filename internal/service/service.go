package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/talx-hub/gopher-users/internal/api/handlers"
	"github.com/talx-hub/gopher-users/internal/dbmanager"
	"github.com/talx-hub/gopher-users/internal/model"
	"github.com/talx-hub/gopher-users/internal/model/user"
	"github.com/talx-hub/gopher-users/internal/observability"
	"github.com/talx-hub/gopher-users/internal/repo"
	"github.com/talx-hub/gopher-users/internal/repo/sqlite"
	"github.com/talx-hub/gopher-users/internal/router"
	"github.com/talx-hub/gopher-users/internal/service/config"
	"github.com/talx-hub/gopher-users/internal/ui"
	"github.com/talx-hub/gopher-users/internal/utils/logger"
)

const (
	backendPostgres = "postgres"
	backendSQLite   = "sqlite"
)

var errUnknownBackend = errors.New("unsupported database URI")

// backendFor picks the store implementation from the DSN scheme.
func backendFor(dsn string) (string, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return backendPostgres, nil
	case strings.HasPrefix(dsn, "sqlite://"), strings.HasPrefix(dsn, "file:"):
		return backendSQLite, nil
	case dsn != "" && !strings.Contains(dsn, "://"):
		return backendSQLite, nil
	}
	return "", fmt.Errorf("%w: %q", errUnknownBackend, dsn)
}

type store struct {
	repo   user.Repository
	pinger handlers.Pinger
	close  func()
}

func openStore(ctx context.Context,
	dsn string, log *slog.Logger, metrics *observability.Metrics,
) (*store, error) {
	backend, err := backendFor(dsn)
	if err != nil {
		return nil, err
	}

	if backend == backendSQLite {
		db, err := sqlite.Open(ctx, dsn, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return &store{
			repo:   sqlite.NewUserRepository(db, log),
			pinger: db,
			close: func() {
				if err := db.Close(); err != nil {
					log.LogAttrs(context.TODO(),
						slog.LevelWarn,
						"failed to close sqlite store",
						slog.Any(model.KeyLoggerError, err),
					)
				}
			},
		}, nil
	}

	dbManager := dbmanager.New(dsn, log).
		WithMetrics(metrics).
		Connect(ctx).
		ApplyMigrations(ctx).
		Ping(ctx)
	if err = dbManager.Error(); err != nil {
		dbManager.Close()
		return nil, fmt.Errorf("db connection error: %w", err)
	}

	pool, err := dbManager.GetPool(ctx)
	if err != nil {
		dbManager.Close()
		return nil, fmt.Errorf("failed to get DB pool: %w", err)
	}

	return &store{
		repo:   repo.NewUserRepository(pool, log),
		pinger: dbManager,
		close:  dbManager.Close,
	}, nil
}

// initService builds the HTTP server for cfg. The returned func releases
// the store and must be called after the server stops.
func initService(ctx context.Context,
	cfg *config.Config, log *slog.Logger,
) (*http.Server, func(), error) {
	metrics := observability.NewMetrics()

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	st, err := openStore(connectCtx, cfg.DatabaseURI, log, metrics)
	if err != nil {
		return nil, nil, err
	}

	usersRepo := observability.NewInstrumentedRepository(st.repo, metrics)

	rr := router.New(log, metrics).WithLimit(cfg.MaxInFlight)
	rr.SetRouter(&struct {
		*handlers.UserHandler
		*handlers.HealthHandler
		*ui.PageHandler
	}{
		UserHandler:   handlers.NewUserHandler(usersRepo, log),
		HealthHandler: handlers.NewHealthHandler(st.pinger, log),
		PageHandler:   ui.NewPageHandler(log),
	})

	srv := &http.Server{
		Addr:              cfg.RunAddr,
		Handler:           rr.GetRouter(),
		ReadHeaderTimeout: model.DefaultReadHeaderTimeout,
	}
	return srv, st.close, nil
}

// serve runs srv until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, cfg *config.Config, log *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.LogAttrs(ctx, slog.LevelInfo, "listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen and serve error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.LogAttrs(context.TODO(), slog.LevelInfo, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func RunServer() {
	cfg := config.NewBuilder(slog.Default()).
		FromDotEnv(".env").
		FromEnv().
		FromFlags().
		GetConfig()
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = model.DefaultShutdownTimeout
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	log := logger.New(level)
	if err != nil {
		log.LogAttrs(context.TODO(),
			slog.LevelWarn,
			"falling back to info log level",
			slog.Any(model.KeyLoggerError, err),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, closeStore, err := initService(ctx, cfg, log)
	if err != nil {
		log.LogAttrs(ctx,
			slog.LevelError,
			"failed to init service",
			slog.Any(model.KeyLoggerError, err),
		)
		return
	}
	defer closeStore()

	if err = serve(ctx, srv, cfg, log); err != nil {
		log.LogAttrs(context.TODO(),
			slog.LevelError,
			"server stopped with error",
			slog.Any(model.KeyLoggerError, err),
		)
	}
}

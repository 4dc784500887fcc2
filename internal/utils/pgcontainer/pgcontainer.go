// Package pgcontainer runs a throwaway PostgreSQL container for integration
// tests.
package pgcontainer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"github.com/talx-hub/gopher-users/internal/model"
)

var ErrDockerUnavailable = errors.New("docker is unavailable")

const (
	defaultTag = "17-alpine"
	envFile    = ".env"
	pgPort     = "5432/tcp"

	dbName       = "test"
	userName     = "test"
	userPassword = "test"

	maxWait = 30 * time.Second
)

type PGContainer struct {
	log      *slog.Logger
	pool     *dockertest.Pool
	resource *dockertest.Resource
	dsn      string
}

func New(log *slog.Logger) *PGContainer {
	return &PGContainer{log: log}
}

func (c *PGContainer) RunContainer() error {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDockerUnavailable, err)
	}
	if err = pool.Client.Ping(); err != nil {
		return fmt.Errorf("%w: %w", ErrDockerUnavailable, err)
	}
	c.pool = pool

	resource, err := pool.RunWithOptions(
		&dockertest.RunOptions{
			Repository: "postgres",
			Tag:        imageTag(),
			Env: []string{
				"POSTGRES_USER=" + userName,
				"POSTGRES_PASSWORD=" + userPassword,
				"POSTGRES_DB=" + dbName,
			},
			ExposedPorts: []string{pgPort},
		},
		func(config *docker.HostConfig) {
			config.AutoRemove = true
			config.RestartPolicy = docker.RestartPolicy{Name: "no"}
		},
	)
	if err != nil {
		return fmt.Errorf("failed to run postgres container: %w", err)
	}
	c.resource = resource

	c.dsn = fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=disable",
		userName,
		userPassword,
		resource.GetHostPort(pgPort),
		dbName,
	)

	pool.MaxWait = maxWait
	if err = pool.Retry(c.ping); err != nil {
		return fmt.Errorf("postgres container is not ready: %w", err)
	}

	c.log.LogAttrs(context.Background(),
		slog.LevelInfo,
		"postgres container is ready",
		slog.String("container", resource.Container.Name),
	)
	return nil
}

func (c *PGContainer) GetDSN() string {
	return c.dsn
}

func (c *PGContainer) Close() {
	if c.pool == nil || c.resource == nil {
		return
	}
	if err := c.pool.Purge(c.resource); err != nil {
		c.log.LogAttrs(context.Background(),
			slog.LevelError,
			"failed to purge the postgres container",
			slog.Any(model.KeyLoggerError, err),
		)
	}
}

func (c *PGContainer) ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, c.dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to the DB: %w", err)
	}
	defer func() {
		_ = conn.Close(context.Background())
	}()

	if err = conn.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping the DB: %w", err)
	}
	return nil
}

// imageTag reads POSTGRES_TAG from the process env or a local .env file.
func imageTag() string {
	if tag := os.Getenv("POSTGRES_TAG"); tag != "" {
		return tag
	}
	if env, err := godotenv.Read(envFile); err == nil {
		if tag := env["POSTGRES_TAG"]; tag != "" {
			return tag
		}
	}
	return defaultTag
}

package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/talx-hub/gopher-users/internal/model"
	"github.com/talx-hub/gopher-users/internal/serviceerrs"
	"github.com/talx-hub/gopher-users/internal/utils/logger"
)

type connectionPool interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type DB struct {
	pool connectionPool
	log  *slog.Logger
}

// storeError logs a driver failure and wraps it into a StoreError. A unique
// violation is additionally marked with serviceerrs.ErrAlreadyExists.
func (d *DB) storeError(ctx context.Context, op string, err error) error {
	level := slog.LevelWarn
	if isConnectionError(err) {
		level = slog.LevelError
	}
	logger.FromContextOr(ctx, d.log).LogAttrs(ctx,
		level,
		"failed to "+op,
		slog.Any(model.KeyLoggerError, err),
	)

	if isUniqueViolation(err) {
		err = fmt.Errorf("%w: %w", serviceerrs.ErrAlreadyExists, err)
	}
	return serviceerrs.NewStoreError(op, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func isConnectionError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.ConnectionException,
			pgerrcode.ConnectionDoesNotExist,
			pgerrcode.ConnectionFailure,
			pgerrcode.CannotConnectNow,
			pgerrcode.SQLClientUnableToEstablishSQLConnection,
			pgerrcode.SQLServerRejectedEstablishmentOfSQLConnection,
			pgerrcode.TransactionResolutionUnknown:
			return true
		}
		return false
	}

	return pgconn.SafeToRetry(err) ||
		pgconn.Timeout(err) ||
		errors.Is(err, context.DeadlineExceeded)
}

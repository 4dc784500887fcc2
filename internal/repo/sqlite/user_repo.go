package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/talx-hub/gopher-users/internal/model"
	"github.com/talx-hub/gopher-users/internal/model/user"
	"github.com/talx-hub/gopher-users/internal/serviceerrs"
	"github.com/talx-hub/gopher-users/internal/utils/logger"
)

const (
	insertUser = `INSERT INTO users (id, username, email, password)
VALUES (?, ?, ?, ?)`
	findUserByID = `SELECT id, username, email, password FROM users
WHERE id = ?`
	findUserByEmail = `SELECT id, username, email, password FROM users
WHERE email = ?`
	updateUser = `UPDATE users SET username = ?, email = ?, password = ?
WHERE id = ?`
	deleteUser = `DELETE FROM users WHERE id = ?`
)

type UserRepository struct {
	db  *sql.DB
	log *slog.Logger
}

func NewUserRepository(db *sql.DB, log *slog.Logger) *UserRepository {
	return &UserRepository{
		db:  db,
		log: log,
	}
}

// Insert stores u and returns its id. A zero u.ID is bound as NULL so that
// SQLite assigns the next row id.
func (r *UserRepository) Insert(ctx context.Context, u *user.User) (int64, error) {
	id := sql.NullInt64{Int64: u.ID, Valid: u.HasID()}
	res, err := r.db.ExecContext(ctx, insertUser, id, u.Username, u.Email, u.Password)
	if err != nil {
		return 0, r.storeError(ctx, "insert user", err)
	}

	newID, err := res.LastInsertId()
	if err != nil {
		return 0, r.storeError(ctx, "read inserted user id", err)
	}
	return newID, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	row := r.db.QueryRowContext(ctx, findUserByID, id)
	return r.scanUser(ctx, "find user by id", row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	row := r.db.QueryRowContext(ctx, findUserByEmail, email)
	return r.scanUser(ctx, "find user by email", row)
}

func (r *UserRepository) scanUser(ctx context.Context, op string, row *sql.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, r.storeError(ctx, op, err)
	}
	return &u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	res, err := r.db.ExecContext(ctx, updateUser, u.Username, u.Email, u.Password, u.ID)
	if err != nil {
		return r.storeError(ctx, "update user", err)
	}
	return r.checkAffected(ctx, "update user", res,
		fmt.Sprintf("no user updated, check the user id %d", u.ID))
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteUser, id)
	if err != nil {
		return r.storeError(ctx, "delete user", err)
	}
	return r.checkAffected(ctx, "delete user", res,
		fmt.Sprintf("no user deleted with id %d", id))
}

func (r *UserRepository) checkAffected(ctx context.Context,
	op string, res sql.Result, notFoundMsg string,
) error {
	n, err := res.RowsAffected()
	if err != nil {
		return r.storeError(ctx, op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", notFoundMsg, serviceerrs.ErrNotFound)
	}
	return nil
}

func (r *UserRepository) storeError(ctx context.Context, op string, err error) error {
	logger.FromContextOr(ctx, r.log).LogAttrs(ctx,
		slog.LevelWarn,
		"failed to "+op,
		slog.Any(model.KeyLoggerError, err),
	)

	if isUniqueViolation(err) {
		err = fmt.Errorf("%w: %w", serviceerrs.ErrAlreadyExists, err)
	}
	return serviceerrs.NewStoreError(op, err)
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/talx-hub/gopher-users/internal/model/user"
	"github.com/talx-hub/gopher-users/internal/repo/internal/db"
	"github.com/talx-hub/gopher-users/internal/serviceerrs"
)

// UserRepository is the PostgreSQL user store. Each method runs exactly one
// statement on a connection borrowed from the pool.
type UserRepository struct {
	DB
}

func NewUserRepository(pool connectionPool, log *slog.Logger) *UserRepository {
	return &UserRepository{
		DB{
			pool: pool,
			log:  log,
		},
	}
}

// Insert stores u and returns its id. A non-zero u.ID is inserted as is
// (bound as a parameter) and echoed back; otherwise the store assigns one.
func (r *UserRepository) Insert(ctx context.Context, u *user.User) (int64, error) {
	queries := db.New(r.pool)

	var (
		id  int64
		err error
	)
	if u.HasID() {
		id, err = queries.InsertUserWithID(ctx, db.InsertUserWithIDParams{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
			Password: u.Password,
		})
	} else {
		id, err = queries.InsertUser(ctx, db.InsertUserParams{
			Username: u.Username,
			Email:    u.Email,
			Password: u.Password,
		})
	}
	if err != nil {
		return 0, r.storeError(ctx, "insert user", err)
	}

	return id, nil
}

// nolint: dupl // ide bug, methods are different
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	queries := db.New(r.pool)
	row, err := queries.FindUserByID(ctx, id)
	return r.lookup(ctx, "find user by id", row, err)
}

// nolint: dupl // ide bug, methods are different
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	queries := db.New(r.pool)
	row, err := queries.FindUserByEmail(ctx, email)
	return r.lookup(ctx, "find user by email", row, err)
}

func (r *UserRepository) lookup(ctx context.Context,
	op string, row db.User, err error,
) (*user.User, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, r.storeError(ctx, op, err)
	}

	return &user.User{
		ID:       row.ID,
		Username: row.Username,
		Email:    row.Email,
		Password: row.Password,
	}, nil
}

// Update overwrites username, email and password of the row with u.ID.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	queries := db.New(r.pool)
	res, err := queries.UpdateUser(ctx, db.UpdateUserParams{
		Username: u.Username,
		Email:    u.Email,
		Password: u.Password,
		ID:       u.ID,
	})
	if err != nil {
		return r.storeError(ctx, "update user", err)
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("no user updated, check the user id %d: %w",
			u.ID, serviceerrs.ErrNotFound)
	}

	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	queries := db.New(r.pool)
	res, err := queries.DeleteUser(ctx, id)
	if err != nil {
		return r.storeError(ctx, "delete user", err)
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("no user deleted with id %d: %w", id, serviceerrs.ErrNotFound)
	}

	return nil
}

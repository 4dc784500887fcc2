package user

import "context"

// User is a row of the users table. Password is an opaque, already hashed
// value: it is stored and returned exactly as the caller passed it.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	ID       int64  `json:"id"`
}

// HasID reports whether the caller supplied an explicit id for insertion.
func (u *User) HasID() bool {
	return u.ID != 0
}

// Repository is the user store contract. Lookups return a nil user and a
// nil error on a miss; Update and Delete return serviceerrs.ErrNotFound
// when no row was affected.
type Repository interface {
	Insert(ctx context.Context, u *User) (int64, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id int64) error
}

package dto

import (
	"errors"

	"github.com/talx-hub/gopher-users/internal/model/user"
)

type UserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	ID       int64  `json:"id,omitempty"`
}

func (r *UserRequest) IsValid() error {
	var invalidIDErr, invalidUsernameErr, invalidEmailErr error
	if r.ID < 0 {
		invalidIDErr = errors.New("id must not be negative")
	}
	if r.Username == "" {
		invalidUsernameErr = errors.New("username is empty")
	}
	if r.Email == "" {
		invalidEmailErr = errors.New("email is empty")
	}
	return errors.Join(invalidIDErr, invalidUsernameErr, invalidEmailErr)
}

func (r *UserRequest) ToUser() *user.User {
	return &user.User{
		ID:       r.ID,
		Username: r.Username,
		Email:    r.Email,
		Password: r.Password,
	}
}

// UserResponse is the public view of a user. The password never leaves the
// service.
type UserResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	ID       int64  `json:"id"`
}

func NewUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}

type CreatedResponse struct {
	ID int64 `json:"id"`
}

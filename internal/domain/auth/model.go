// Package auth provides user verification and API token handling.
package auth

import (
	"context"
	"strings"

	"dcolumn/internal/core/apperror"
	"dcolumn/internal/core/entity"
)

// User is an API account. Password hashes are bcrypt; the clear text never
// leaves the login handler.
type User struct {
	entity.Base
	Username     string `db:"username" json:"username"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	IsAdmin      bool   `db:"is_admin" json:"isAdmin"`
}

// Validate implements entity.Validatable.
func (u *User) Validate(_ context.Context) error {
	if strings.TrimSpace(u.Username) == "" {
		return apperror.NewValidation("username must not be empty")
	}
	if u.PasswordHash == "" {
		return apperror.NewValidation("user has no password set").
			WithDetail("username", u.Username)
	}
	return nil
}

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}

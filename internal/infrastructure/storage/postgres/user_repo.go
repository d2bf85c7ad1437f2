package postgres

import (
	"context"

	"dcolumn/internal/domain/auth"
)

// UserRepo persists API accounts.
type UserRepo struct {
	*BaseRepo[*auth.User]
}

var _ auth.Repository = (*UserRepo)(nil)

// NewUserRepo creates the user repository.
func NewUserRepo(txm *TxManager) *UserRepo {
	return &UserRepo{
		BaseRepo: NewBaseRepo(txm, "users", "username",
			func() *auth.User { return &auth.User{} }),
	}
}

// GetByUsername retrieves one user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	return r.GetBy(ctx, "username", username)
}

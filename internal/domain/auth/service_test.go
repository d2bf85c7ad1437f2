package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcolumn/internal/core/apperror"
	"dcolumn/pkg/logger"
)

type fakeUserRepo struct {
	users  map[string]*User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*User), nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, u *User) error {
	if _, ok := r.users[u.Username]; ok {
		return apperror.NewConflict("duplicate row in users")
	}
	u.ID = r.nextID
	u.Active = true
	r.nextID++
	r.users[u.Username] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperror.NewNotFound("users", id)
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	if u, ok := r.users[username]; ok {
		return u, nil
	}
	return nil, apperror.NewNotFound("users", username)
}

func newAuthService(t *testing.T) (*Service, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo()
	return NewService(repo, "test-secret", logger.Default()), repo
}

func TestAuthenticateRoundTrip(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, "alice", "alice@example.com", "s3cret", true)
	require.NoError(t, err)
	require.NotZero(t, user.ID)

	token, err := svc.Authenticate(ctx, "alice", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	uc, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, uc.UserID)
	assert.Equal(t, "alice", uc.Username)
	assert.True(t, uc.IsAdmin)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.RegisterUser(ctx, "bob", "", "right", false)
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "bob", "wrong")
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))

	// Unknown users answer identically.
	_, err = svc.Authenticate(ctx, "nobody", "whatever")
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
}

func TestAuthenticateInactiveUser(t *testing.T) {
	svc, repo := newAuthService(t)
	ctx := context.Background()

	_, err := svc.RegisterUser(ctx, "carol", "", "pw", false)
	require.NoError(t, err)
	repo.users["carol"].Active = false

	_, err = svc.Authenticate(ctx, "carol", "pw")
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.ValidateToken("not-a-token")
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	svc, _ := newAuthService(t)
	other := NewService(newFakeUserRepo(), "other-secret", logger.Default())
	ctx := context.Background()

	_, err := svc.RegisterUser(ctx, "dave", "", "pw", false)
	require.NoError(t, err)
	token, err := svc.Authenticate(ctx, "dave", "pw")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
}

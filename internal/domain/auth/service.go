package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"dcolumn/internal/core/apperror"
	appctx "dcolumn/internal/core/context"
	"dcolumn/pkg/logger"
)

// TokenTTL is the lifetime of issued API tokens.
const TokenTTL = 24 * time.Hour

// Claims is the JWT payload carried by API tokens.
type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"admin"`
	jwt.RegisteredClaims
}

// Service verifies credentials and issues signed tokens.
type Service struct {
	users  Repository
	secret []byte
	log    *logger.Logger
}

// NewService creates the auth service.
func NewService(users Repository, secret string, log *logger.Logger) *Service {
	return &Service{
		users:  users,
		secret: []byte(secret),
		log:    log.WithComponent("auth.service"),
	}
}

// HashPassword produces a bcrypt hash for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Authenticate verifies credentials and returns a signed token. Wrong
// username and wrong password answer identically.
func (s *Service) Authenticate(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if apperror.IsNotFound(err) {
			return "", apperror.NewUnauthorized("invalid credentials")
		}
		return "", err
	}
	if !user.Active {
		return "", apperror.NewUnauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.WithContext(ctx).Warnw("failed login attempt", "username", username)
		return "", apperror.NewUnauthorized("invalid credentials")
	}

	now := time.Now().UTC()
	claims := Claims{
		Username: user.Username,
		Email:    user.Email,
		IsAdmin:  user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperror.NewInternal(err)
	}
	return token, nil
}

// ValidateToken parses and verifies a token, returning the user context
// the middleware installs on the request.
func (s *Service) ValidateToken(tokenString string) (*appctx.UserContext, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.NewUnauthorized("token expired")
		}
		return nil, apperror.NewUnauthorized("invalid token")
	}
	if !token.Valid {
		return nil, apperror.NewUnauthorized("invalid token")
	}

	var userID int64
	if _, err := fmt.Sscanf(claims.Subject, "%d", &userID); err != nil {
		return nil, apperror.NewUnauthorized("invalid token subject")
	}

	return &appctx.UserContext{
		UserID:   userID,
		Username: claims.Username,
		Email:    claims.Email,
		IsAdmin:  claims.IsAdmin,
	}, nil
}

// RegisterUser creates an account with a hashed password.
func (s *Service) RegisterUser(ctx context.Context, username, email, password string, isAdmin bool) (*User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	u := &User{Username: username, Email: email, PasswordHash: hash, IsAdmin: isAdmin}
	if err := u.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.WithContext(ctx).Infow("user registered", "username", username, "admin", isAdmin)
	return u, nil
}

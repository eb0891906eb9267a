// Package services provides the business logic layer for the task backend.
// This file implements authentication services including user registration
// and login validation with bcrypt for secure credential management.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/database"
	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/models"
	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/repository"
)

// AuthService handles registration and credential verification. It is the
// only component that ever writes user rows; the task core treats users as
// external and read-only.
//
// Security Notes:
//   - bcrypt cost 12, constant-time comparison on verify
//   - plaintext passwords are never stored or logged
//   - unknown-user and wrong-password failures are indistinguishable
type AuthService struct {
	db    database.DB
	users *repository.UserRepository
}

// NewAuthService creates a new AuthService bound to the given handle.
func NewAuthService(db database.DB) *AuthService {
	return &AuthService{
		db:    db,
		users: repository.NewUserRepository(),
	}
}

// Register creates a new user account with a hashed password.
// A duplicate username surfaces as Conflict.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, models.NewValidation("username is required")
	}
	if password == "" {
		return nil, models.NewValidation("password is required")
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, models.NewServerError(err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, s.db, user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, models.NewConflict("username already taken")
		}
		return nil, models.NewServerError(err)
	}

	return user, nil
}

// Authenticate verifies user credentials and returns the user record on
// success. The same failure is returned for an unknown username and a wrong
// password so the response never reveals which users exist.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, s.db, username)
	if err != nil {
		return nil, models.NewServerError(err)
	}
	if user == nil {
		return nil, models.NewInsufficientPrivilege("invalid username or password")
	}

	// Constant-time comparison prevents timing attacks.
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.NewInsufficientPrivilege("invalid username or password")
	}

	return user, nil
}

// HashPassword generates a bcrypt hash of the provided plaintext password.
func (s *AuthService) HashPassword(password string) (string, error) {
	// Cost 12 balances security and login latency.
	const bcryptCost = 12
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hash), err
}

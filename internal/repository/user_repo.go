// Package repository implements the database access layer for the task backend.
// This file handles user account lookups and creation. The task core only
// ever reads users; mutation is limited to the auth subsystem's registration.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/database"
	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/models"
)

// UserRepository handles user-related database operations.
type UserRepository struct{}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// FindByUsername retrieves a user by their unique username.
// Used for authentication during login. Returns (nil, nil) when no such
// user exists; the caller decides how a missing row is classified.
func (r *UserRepository) FindByUsername(ctx context.Context, q database.Querier, username string) (*models.User, error) {
	query := `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`

	var user models.User
	err := q.QueryRow(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// FindByID retrieves a user by their unique ID.
// Returns (nil, nil) when no such user exists.
func (r *UserRepository) FindByID(ctx context.Context, q database.Querier, id int) (*models.User, error) {
	query := `SELECT id, username, password_hash, created_at FROM users WHERE id = $1`

	var user models.User
	err := q.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Exists reports whether a user row with the given id exists.
// Used by membership and relation operations to validate target users
// before inserting rows that reference them.
func (r *UserRepository) Exists(ctx context.Context, q database.Querier, id int) (bool, error) {
	query := `SELECT 1 FROM users WHERE id = $1`

	var one int
	err := q.QueryRow(ctx, query, id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// Create inserts a new user into the database.
// Password must be pre-hashed with bcrypt before calling this method.
//
// Database: Username must be unique (enforced by UNIQUE constraint)
// Side Effects: Populates user.ID and user.CreatedAt with database values
func (r *UserRepository) Create(ctx context.Context, q database.Querier, user *models.User) error {
	query := `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	return q.QueryRow(ctx, query, user.Username, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
}

// Package services_test provides unit tests for the services layer.
// This file covers registration and credential verification.
package services_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/models"
	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/services"
)

// TestRegister verifies registration stores a bcrypt hash, never the
// plaintext password.
func TestRegister(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("alice", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(10, testTime))

	svc := services.NewAuthService(mock)

	user, err := svc.Register(context.Background(), "  alice  ", "s3cret")

	require.NoError(t, err)
	assert.Equal(t, 10, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "s3cret", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestRegister_DuplicateUsername verifies a unique violation surfaces as a
// conflict.
func TestRegister_DuplicateUsername(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("alice", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	svc := services.NewAuthService(mock)

	_, err := svc.Register(context.Background(), "alice", "s3cret")

	require.Error(t, err)
	assert.Equal(t, models.KindConflict, models.KindOf(err))
	assert.EqualError(t, err, "username already taken")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestRegister_Validation verifies blank credentials are rejected before any
// query.
func TestRegister_Validation(t *testing.T) {
	mock := newMock(t)
	svc := services.NewAuthService(mock)

	_, err := svc.Register(context.Background(), "   ", "s3cret")
	assert.Equal(t, models.KindValidation, models.KindOf(err))

	_, err = svc.Register(context.Background(), "alice", "")
	assert.Equal(t, models.KindValidation, models.KindOf(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestAuthenticate verifies a correct password matches the stored hash.
func TestAuthenticate(t *testing.T) {
	mock := newMock(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, username, password_hash, created_at FROM users WHERE username").
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
			AddRow(10, "alice", string(hash), testTime))

	svc := services.NewAuthService(mock)

	user, err := svc.Authenticate(context.Background(), "alice", "s3cret")

	require.NoError(t, err)
	assert.Equal(t, 10, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestAuthenticate_Failures verifies an unknown username and a wrong
// password produce the same indistinguishable error.
func TestAuthenticate_Failures(t *testing.T) {
	mock := newMock(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, username, password_hash, created_at FROM users WHERE username").
		WithArgs("nobody").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("SELECT id, username, password_hash, created_at FROM users WHERE username").
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
			AddRow(10, "alice", string(hash), testTime))

	svc := services.NewAuthService(mock)

	_, unknownErr := svc.Authenticate(context.Background(), "nobody", "s3cret")
	_, wrongErr := svc.Authenticate(context.Background(), "alice", "wrong")

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	assert.Equal(t, models.KindInsufficientPrivilege, models.KindOf(unknownErr))
	assert.Equal(t, models.KindInsufficientPrivilege, models.KindOf(wrongErr))
	assert.NoError(t, mock.ExpectationsWereMet())
}

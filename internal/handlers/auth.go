// Package handlers implements the HTTP request handlers for the task backend.
// This file handles authentication operations: registration, login, logout
// and session lifecycle.
package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/database"
	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/models"
	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/services"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	store *session.Store
	auth  *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(store *session.Store, db database.DB) *AuthHandler {
	return &AuthHandler{
		store: store,
		auth:  services.NewAuthService(db),
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a new user account.
//
// Route: POST /register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidation("invalid request body"))
	}

	user, err := h.auth.Register(c.Context(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login authenticates credentials and creates a session.
//
// Route: POST /login
// Side Effects: stores user_id and username in the session on success
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidation("invalid request body"))
	}

	user, err := h.auth.Authenticate(c.Context(), req.Username, req.Password)
	if err != nil {
		// Credential failures are always 401 here, regardless of kind.
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid username or password"})
	}

	sess, err := h.store.Get(c)
	if err != nil {
		return respondError(c, err)
	}

	sess.Set("user_id", user.ID)
	sess.Set("username", user.Username)

	if err := sess.Save(); err != nil {
		return respondError(c, err)
	}

	return c.JSON(user)
}

// Logout destroys the session.
//
// Route: POST /logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return c.SendStatus(fiber.StatusNoContent)
	}

	if err := sess.Destroy(); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

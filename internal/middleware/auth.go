// Package middleware provides HTTP middleware functions for authentication.
// These middleware functions protect routes and expose the verified caller
// identity to handlers.
package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// AuthRequired is a middleware that ensures the user is authenticated.
// It checks for a valid session and user_id, returning 401 if not found.
//
// This middleware should be applied to all protected routes. It sets the
// caller identity in the context (c.Locals) for use by handlers.
//
// Context Locals Set:
//   - user_id: The authenticated user's ID (int)
//   - username: The user's display name (string)
//
// Example:
//
//	api := app.Group("/tasks", middleware.AuthRequired(store))
func AuthRequired(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Retrieve session from store
		sess, err := store.Get(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
		}

		// Check if user_id exists in session
		userID, ok := sess.Get("user_id").(int)
		if !ok || userID == 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
		}

		// Pass user information to context for handlers to use
		c.Locals("user_id", userID)
		c.Locals("username", sess.Get("username"))

		// Continue to next handler
		return c.Next()
	}
}

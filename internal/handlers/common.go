// Package handlers implements the HTTP request handlers for the task backend.
// This file contains the shared helpers: id parsing, caller identity lookup
// and the single mapping from service error kinds to transport status codes.
package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/models"
)

// currentUserID returns the verified caller identity set by the auth
// middleware. Routes behind AuthRequired always have it.
func currentUserID(c *fiber.Ctx) int {
	id, _ := c.Locals("user_id").(int)
	return id
}

// paramID parses a numeric route parameter. A non-numeric id is a
// validation error, mirroring the service layer's input rules.
func paramID(c *fiber.Ctx, name string) (int, error) {
	id, err := strconv.Atoi(c.Params(name))
	if err != nil || id <= 0 {
		return 0, models.NewValidation("invalid " + name)
	}
	return id, nil
}

// statusForKind maps a service error kind to its HTTP status code.
func statusForKind(kind models.ErrorKind) int {
	switch kind {
	case models.KindNotFound:
		return fiber.StatusNotFound
	case models.KindInsufficientPrivilege:
		return fiber.StatusForbidden
	case models.KindValidation:
		return fiber.StatusBadRequest
	case models.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes a service failure as a JSON error envelope. Untyped
// errors are reported as internal server errors without leaking detail.
func respondError(c *fiber.Ctx, err error) error {
	var e *models.Error
	if errors.As(err, &e) {
		return c.Status(statusForKind(e.Kind)).JSON(fiber.Map{"error": e.Message})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

// Package handlers implements the HTTP request handlers for the task backend.
// This file handles group lifecycle and membership management endpoints.
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/database"
	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/models"
	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/services"
)

// GroupHandler handles group-related HTTP requests.
type GroupHandler struct {
	groups *services.GroupService
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(db database.DB) *GroupHandler {
	return &GroupHandler{
		groups: services.NewGroupService(db),
	}
}

type createGroupRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// Create inserts a new group with the caller as its admin.
//
// Route: POST /groups
func (h *GroupHandler) Create(c *fiber.Ctx) error {
	var req createGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidation("invalid request body"))
	}

	group, err := h.groups.CreateGroup(c.Context(), req.Name, req.Description, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(group)
}

// List retrieves all groups with member counts.
//
// Route: GET /groups
func (h *GroupHandler) List(c *fiber.Ctx) error {
	groups, err := h.groups.ListGroups(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(groups)
}

// Delete removes a group; the store cascade removes its members and tasks.
//
// Route: DELETE /groups/:id
func (h *GroupHandler) Delete(c *fiber.Ctx) error {
	groupID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.groups.DeleteGroup(c.Context(), groupID, currentUserID(c)); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListMembers retrieves a group's membership with roles.
//
// Route: GET /groups/:id/members
func (h *GroupHandler) ListMembers(c *fiber.Ctx) error {
	groupID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	members, err := h.groups.ListGroupMembers(c.Context(), groupID, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(members)
}

type memberRequest struct {
	UserID int `json:"userId"`
}

// AddMember adds a user to a group as a member.
//
// Route: POST /groups/:id/members
func (h *GroupHandler) AddMember(c *fiber.Ctx) error {
	groupID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req memberRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidation("invalid request body"))
	}
	if req.UserID <= 0 {
		return respondError(c, models.NewValidation("invalid userId"))
	}

	if err := h.groups.AddUserToGroup(c.Context(), groupID, req.UserID, currentUserID(c)); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveMember removes a user from a group, scrubbing their assignee and
// watcher rows on the group's tasks in the same transaction.
//
// Route: DELETE /groups/:id/members/:user_id
func (h *GroupHandler) RemoveMember(c *fiber.Ctx) error {
	groupID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	userID, err := paramID(c, "user_id")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.groups.RemoveUserFromGroup(c.Context(), groupID, userID, currentUserID(c)); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// RegisterRoutes mounts the group routes on the router.
func (h *GroupHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/groups", h.List)
	router.Post("/groups", h.Create)
	router.Delete("/groups/:id", h.Delete)
	router.Get("/groups/:id/members", h.ListMembers)
	router.Post("/groups/:id/members", h.AddMember)
	router.Delete("/groups/:id/members/:user_id", h.RemoveMember)
}

// Package handlers implements the HTTP request handlers for the task backend.
// This file handles task CRUD, comments and the assignee/watcher relations.
// Handlers stay thin: parse the request, call one service operation, map the
// result or error kind onto the response.
package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/database"
	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/models"
	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/services"
)

// TaskHandler handles task, comment and relation HTTP requests.
type TaskHandler struct {
	tasks     *services.TaskService
	comments  *services.CommentService
	relations *services.RelationService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(db database.DB) *TaskHandler {
	return &TaskHandler{
		tasks:     services.NewTaskService(db),
		comments:  services.NewCommentService(db),
		relations: services.NewRelationService(db),
	}
}

type createTaskRequest struct {
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	GroupID     *int       `json:"groupId"`
	ParentID    *int       `json:"parentId"`
}

// Create inserts a new task owned by the caller.
//
// Route: POST /tasks
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	var req createTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidation("invalid request body"))
	}

	task, err := h.tasks.CreateTask(c.Context(), models.TaskCreate{
		Description: req.Description,
		DueDate:     req.DueDate,
		OwnerID:     currentUserID(c),
		GroupID:     req.GroupID,
		ParentID:    req.ParentID,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(task)
}

type updateTaskRequest struct {
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	GroupID     *int       `json:"groupId"`
	Completed   *bool      `json:"completed"`

	// Explicit clear flags, since JSON null and "absent" both decode to nil.
	RemoveDueDate bool `json:"removeDueDate"`
	RemoveGroup   bool `json:"removeGroup"`
}

// Update applies a partial update to a task.
//
// Route: PATCH /tasks/:id
func (h *TaskHandler) Update(c *fiber.Ctx) error {
	taskID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req updateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidation("invalid request body"))
	}

	upd := models.TaskUpdate{
		Description: req.Description,
		Completed:   req.Completed,
	}
	if req.DueDate != nil || req.RemoveDueDate {
		upd.DueDateSet = true
		if !req.RemoveDueDate {
			upd.DueDate = req.DueDate
		}
	}
	if req.GroupID != nil || req.RemoveGroup {
		upd.GroupIDSet = true
		if !req.RemoveGroup {
			upd.GroupID = req.GroupID
		}
	}

	task, err := h.tasks.UpdateTask(c.Context(), taskID, currentUserID(c), upd)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(task)
}

// Delete removes a task (and, for roots, its children through the store cascade).
//
// Route: DELETE /tasks/:id
func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	taskID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.tasks.DeleteTask(c.Context(), taskID, currentUserID(c)); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Get retrieves a task with its direct children.
//
// Route: GET /tasks/:id
func (h *TaskHandler) Get(c *fiber.Ctx) error {
	taskID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	result, err := h.tasks.GetTaskByID(c.Context(), taskID, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(result)
}

type addCommentRequest struct {
	Content string `json:"content"`
}

// AddComment creates a comment on a task.
//
// Route: POST /tasks/:id/comments
func (h *TaskHandler) AddComment(c *fiber.Ctx) error {
	taskID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req addCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidation("invalid request body"))
	}

	comment, err := h.comments.AddComment(c.Context(), taskID, currentUserID(c), req.Content)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// ListComments retrieves a task's comments with author names.
//
// Route: GET /tasks/:id/comments
func (h *TaskHandler) ListComments(c *fiber.Ctx) error {
	taskID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	comments, err := h.comments.ListComments(c.Context(), taskID, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(comments)
}

// DeleteComment removes a comment.
//
// Route: DELETE /comments/:id
func (h *TaskHandler) DeleteComment(c *fiber.Ctx) error {
	commentID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.comments.DeleteComment(c.Context(), commentID, currentUserID(c)); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type relationRequest struct {
	UserID int `json:"userId"`
}

// relationHandlers builds the add/remove/list handler trio for one relation
// kind; the two sets share all behavior except the table they hit.
func (h *TaskHandler) relationHandlers(kind models.RelationKind) (add, remove, list fiber.Handler) {
	add = func(c *fiber.Ctx) error {
		taskID, err := paramID(c, "id")
		if err != nil {
			return respondError(c, err)
		}

		var req relationRequest
		if err := c.BodyParser(&req); err != nil {
			return respondError(c, models.NewValidation("invalid request body"))
		}
		if req.UserID <= 0 {
			return respondError(c, models.NewValidation("invalid userId"))
		}

		if err := h.relations.Mutate(c.Context(), taskID, req.UserID, currentUserID(c), kind, models.RelationAdd); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}

	remove = func(c *fiber.Ctx) error {
		taskID, err := paramID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		userID, err := paramID(c, "user_id")
		if err != nil {
			return respondError(c, err)
		}

		if err := h.relations.Mutate(c.Context(), taskID, userID, currentUserID(c), kind, models.RelationRemove); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}

	list = func(c *fiber.Ctx) error {
		taskID, err := paramID(c, "id")
		if err != nil {
			return respondError(c, err)
		}

		users, err := h.relations.ListRelated(c.Context(), taskID, currentUserID(c), kind)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(users)
	}

	return add, remove, list
}

// RegisterRoutes mounts the task, comment and relation routes on the router.
func (h *TaskHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/tasks", h.Create)
	router.Get("/tasks/:id", h.Get)
	router.Patch("/tasks/:id", h.Update)
	router.Delete("/tasks/:id", h.Delete)

	router.Get("/tasks/:id/comments", h.ListComments)
	router.Post("/tasks/:id/comments", h.AddComment)
	router.Delete("/comments/:id", h.DeleteComment)

	addAssigned, removeAssigned, listAssigned := h.relationHandlers(models.RelationAssigned)
	router.Get("/tasks/:id/assigned", listAssigned)
	router.Post("/tasks/:id/assigned", addAssigned)
	router.Delete("/tasks/:id/assigned/:user_id", removeAssigned)

	addWatcher, removeWatcher, listWatchers := h.relationHandlers(models.RelationWatcher)
	router.Get("/tasks/:id/watchers", listWatchers)
	router.Post("/tasks/:id/watchers", addWatcher)
	router.Delete("/tasks/:id/watchers/:user_id", removeWatcher)
}

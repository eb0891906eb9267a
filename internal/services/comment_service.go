// Package services provides the business logic layer for the task backend.
// This file implements the comment access guard: comment creation, removal
// and listing under task-level and group-level privilege.
package services

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/database"
	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/models"
	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/repository"
)

// CommentService authorizes and performs comment creation and removal.
type CommentService struct {
	db        database.DB
	tasks     *repository.TaskRepository
	comments  *repository.CommentRepository
	privilege *PrivilegeEvaluator
}

// NewCommentService creates a new CommentService bound to the given handle.
func NewCommentService(db database.DB) *CommentService {
	return &CommentService{
		db:        db,
		tasks:     repository.NewTaskRepository(),
		comments:  repository.NewCommentRepository(),
		privilege: NewPrivilegeEvaluator(),
	}
}

// AddComment creates a comment on a task. The task must exist, the caller
// must be able to access it (owner of a personal task, member of a group
// task), and the content must be non-empty after trimming.
func (s *CommentService) AddComment(ctx context.Context, taskID, userID int, content string) (*models.TaskComment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidation("comment content is required")
	}

	comment := &models.TaskComment{
		TaskID:  taskID,
		UserID:  userID,
		Content: content,
	}

	err := database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		task, err := s.tasks.GetByID(ctx, tx, taskID)
		if err != nil {
			return models.NewServerError(err)
		}
		if task == nil {
			return models.NewNotFound("task not found")
		}

		if !s.privilege.CanAccessTask(ctx, tx, task, userID) {
			return models.NewInsufficientPrivilege("insufficient privileges")
		}

		if err := s.comments.Insert(ctx, tx, comment); err != nil {
			return models.NewServerError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return comment, nil
}

// DeleteComment removes a comment.
//
// When the task belongs to a group, membership of that group is a necessary
// precondition before any finer-grained check applies; a non-member can
// never delete a comment on a group task. Past the gate, deletion is
// permitted for the comment's author, the task's owner, or - on group tasks
// only - an admin of that group.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, userID int) error {
	return database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		comment, task, err := s.comments.GetWithTask(ctx, tx, commentID)
		if err != nil {
			return models.NewServerError(err)
		}
		if comment == nil {
			return models.NewNotFound("comment not found")
		}

		if task.GroupID != nil && !s.privilege.IsGroupMember(ctx, tx, *task.GroupID, userID, false) {
			return models.NewInsufficientPrivilege("insufficient privileges")
		}

		allowed := comment.UserID == userID ||
			task.OwnerID == userID ||
			(task.GroupID != nil && s.privilege.IsGroupMember(ctx, tx, *task.GroupID, userID, true))
		if !allowed {
			return models.NewInsufficientPrivilege("insufficient privileges")
		}

		if err := s.comments.Delete(ctx, tx, commentID); err != nil {
			return models.NewServerError(err)
		}
		return nil
	})
}

// ListComments retrieves a task's comments ordered by creation time
// ascending, each annotated with the author's username. Read-only, same
// access rule as task retrieval.
func (s *CommentService) ListComments(ctx context.Context, taskID, userID int) ([]models.CommentView, error) {
	task, err := s.tasks.GetByID(ctx, s.db, taskID)
	if err != nil {
		return nil, models.NewServerError(err)
	}
	if task == nil {
		return nil, models.NewNotFound("task not found")
	}

	if !s.privilege.CanAccessTask(ctx, s.db, task, userID) {
		return nil, models.NewInsufficientPrivilege("insufficient privileges")
	}

	comments, err := s.comments.ListByTask(ctx, s.db, taskID)
	if err != nil {
		return nil, models.NewServerError(err)
	}
	return comments, nil
}

// Package services provides the business logic layer for the task backend.
// This file implements the task hierarchy engine: creation, update, deletion
// and retrieval of tasks, together with the group-inheritance and
// completion-cascade invariants between a parent and its children.
package services

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/database"
	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/models"
	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/repository"
)

// TaskService creates, updates, deletes and retrieves tasks.
//
// Invariants maintained across every mutation:
//   - a child task's group id always equals its parent's group id
//   - a root with children is completed iff every child is completed
//
// Every mutating operation runs inside a single transaction: the privilege
// reads, the row update and the cascades commit or roll back together.
type TaskService struct {
	db        database.DB
	tasks     *repository.TaskRepository
	privilege *PrivilegeEvaluator
}

// NewTaskService creates a new TaskService bound to the given handle.
func NewTaskService(db database.DB) *TaskService {
	return &TaskService{
		db:        db,
		tasks:     repository.NewTaskRepository(),
		privilege: NewPrivilegeEvaluator(),
	}
}

// CreateTask validates and inserts a new task.
//
// Rules:
//   - description must be non-empty after trimming
//   - with a parent: the parent must exist; the creator must be a member of
//     the parent's group, or the parent's owner when it has no group; the new
//     task's group id is forced to the parent's, silently overriding any
//     caller-supplied group id
//   - without a parent but with a group: the creator must already be a
//     member of that group
//
// Returns the full row as re-read after the insert.
func (s *TaskService) CreateTask(ctx context.Context, in models.TaskCreate) (*models.Task, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, models.NewValidation("task description is required")
	}

	task := &models.Task{
		Description: description,
		DueDate:     in.DueDate,
		OwnerID:     in.OwnerID,
		GroupID:     in.GroupID,
		ParentID:    in.ParentID,
	}

	var created *models.Task
	err := database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		if in.ParentID != nil {
			parent, err := s.tasks.GetByID(ctx, tx, *in.ParentID)
			if err != nil {
				return models.NewServerError(err)
			}
			if parent == nil {
				return models.NewNotFound("parent task not found")
			}
			if parent.ParentID != nil {
				return models.NewValidation("tasks can only nest one level deep")
			}

			if parent.GroupID != nil {
				if !s.privilege.IsGroupMember(ctx, tx, *parent.GroupID, in.OwnerID, false) {
					return models.NewInsufficientPrivilege("insufficient privileges")
				}
			} else if parent.OwnerID != in.OwnerID {
				return models.NewInsufficientPrivilege("insufficient privileges")
			}

			// The child's group always tracks its parent, regardless of
			// what the caller supplied.
			task.GroupID = parent.GroupID
		} else if in.GroupID != nil {
			if !s.privilege.IsGroupMember(ctx, tx, *in.GroupID, in.OwnerID, false) {
				return models.NewInsufficientPrivilege("insufficient privileges")
			}
		}

		if err := s.tasks.Insert(ctx, tx, task); err != nil {
			return models.NewServerError(err)
		}

		// Re-read the full row so derived fields come back normalized.
		row, err := s.tasks.GetByID(ctx, tx, task.ID)
		if err != nil {
			return models.NewServerError(err)
		}
		created = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateTask applies a partial update to a task and performs the cascades
// the change requires, all in one transaction.
//
// Group-id transitions on a root task follow distinct rules: adding a group
// requires task ownership plus membership of the destination; moving between
// groups requires admin of the current group plus membership of the
// destination; removing a group requires admin of the current group, or
// ownership plus current membership. A child task may never change its own
// group id.
func (s *TaskService) UpdateTask(ctx context.Context, taskID, callerID int, upd models.TaskUpdate) (*models.Task, error) {
	if upd.Description != nil && strings.TrimSpace(*upd.Description) == "" {
		return nil, models.NewValidation("task description is required")
	}

	var updated *models.Task
	err := database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		prev, err := s.tasks.GetByID(ctx, tx, taskID)
		if err != nil {
			return models.NewServerError(err)
		}
		if prev == nil {
			return models.NewNotFound("task not found")
		}

		if !s.privilege.CanAccessTask(ctx, tx, prev, callerID) {
			return models.NewInsufficientPrivilege("insufficient privileges")
		}

		next := *prev
		if upd.Description != nil {
			next.Description = strings.TrimSpace(*upd.Description)
		}
		if upd.DueDateSet {
			next.DueDate = upd.DueDate
		}
		if upd.Completed != nil {
			next.Completed = *upd.Completed
		}

		if upd.GroupIDSet && !groupEqual(prev.GroupID, upd.GroupID) {
			if err := s.authorizeGroupChange(ctx, tx, prev, upd.GroupID, callerID); err != nil {
				return err
			}
			next.GroupID = upd.GroupID
		}

		if err := s.tasks.Update(ctx, tx, &next); err != nil {
			return models.NewServerError(err)
		}

		if err := s.applyCascades(ctx, tx, prev, &next); err != nil {
			return err
		}

		row, err := s.tasks.GetByID(ctx, tx, next.ID)
		if err != nil {
			return models.NewServerError(err)
		}
		updated = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// authorizeGroupChange enforces the root-task group transition rules.
// A nonexistent destination group simply fails its membership check and
// surfaces as an authorization failure (fail closed).
func (s *TaskService) authorizeGroupChange(ctx context.Context, q database.Querier, prev *models.Task, dest *int, callerID int) error {
	if prev.ParentID != nil {
		// A child's group always tracks its parent and is never
		// independently settable.
		return models.NewInsufficientPrivilege("child task group follows its parent")
	}

	isOwner := prev.OwnerID == callerID

	switch {
	case prev.GroupID == nil && dest != nil:
		// Adding a group: owner of the task and member of the destination.
		if !isOwner || !s.privilege.IsGroupMember(ctx, q, *dest, callerID, false) {
			return models.NewInsufficientPrivilege("insufficient privileges")
		}
	case prev.GroupID != nil && dest != nil:
		// Moving between groups: admin of the current, member of the destination.
		if !s.privilege.IsGroupMember(ctx, q, *prev.GroupID, callerID, true) ||
			!s.privilege.IsGroupMember(ctx, q, *dest, callerID, false) {
			return models.NewInsufficientPrivilege("insufficient privileges")
		}
	case prev.GroupID != nil && dest == nil:
		// Removing the group: admin of the current group, or owner plus
		// current member.
		isAdmin := s.privilege.IsGroupMember(ctx, q, *prev.GroupID, callerID, true)
		if !isAdmin && !(isOwner && s.privilege.IsGroupMember(ctx, q, *prev.GroupID, callerID, false)) {
			return models.NewInsufficientPrivilege("insufficient privileges")
		}
	}

	return nil
}

// applyCascades executes the plan derived from the prev/next snapshots.
func (s *TaskService) applyCascades(ctx context.Context, q database.Querier, prev, next *models.Task) error {
	var siblings []models.Task
	if next.ParentID != nil && prev.Completed != next.Completed && next.Completed {
		// Post-update sibling snapshots, the updated task included.
		var err error
		siblings, err = s.tasks.ListChildren(ctx, q, *next.ParentID)
		if err != nil {
			return models.NewServerError(err)
		}
	}

	plan := PlanCascade(*prev, *next, siblings)

	if plan.ChildGroup {
		if err := s.tasks.UpdateChildrenGroup(ctx, q, next.ID, next.GroupID); err != nil {
			return models.NewServerError(err)
		}
	}
	if plan.ChildCompleted {
		if err := s.tasks.UpdateChildrenCompleted(ctx, q, next.ID, next.Completed); err != nil {
			return models.NewServerError(err)
		}
	}
	if plan.ParentCompleted != nil {
		if err := s.tasks.SetCompleted(ctx, q, *next.ParentID, *plan.ParentCompleted); err != nil {
			return models.NewServerError(err)
		}
	}

	return nil
}

// DeleteTask removes a task.
//
// Deleting a root relies on the store's cascading delete to remove all
// children and their comments/assignments/watchers atomically. Deleting a
// child recomputes the parent's completion from the remaining siblings.
func (s *TaskService) DeleteTask(ctx context.Context, taskID, callerID int) error {
	return database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		task, err := s.tasks.GetByID(ctx, tx, taskID)
		if err != nil {
			return models.NewServerError(err)
		}
		if task == nil {
			return models.NewNotFound("task not found")
		}

		if !s.privilege.CanAccessTask(ctx, tx, task, callerID) {
			return models.NewInsufficientPrivilege("insufficient privileges")
		}

		if err := s.tasks.Delete(ctx, tx, task.ID); err != nil {
			return models.NewServerError(err)
		}

		if task.ParentID != nil {
			remaining, err := s.tasks.ListChildren(ctx, tx, *task.ParentID)
			if err != nil {
				return models.NewServerError(err)
			}
			completed := ParentCompletionAfterRemoval(remaining)
			if err := s.tasks.SetCompleted(ctx, tx, *task.ParentID, completed); err != nil {
				return models.NewServerError(err)
			}
		}

		return nil
	})
}

// GetTaskByID retrieves a task and its direct children ordered by creation
// time ascending. Read-only: no explicit transaction, no cascade logic.
func (s *TaskService) GetTaskByID(ctx context.Context, taskID, userID int) (*models.TaskWithChildren, error) {
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

	children, err := s.tasks.ListChildren(ctx, s.db, task.ID)
	if err != nil {
		return nil, models.NewServerError(err)
	}

	return &models.TaskWithChildren{Task: *task, Children: children}, nil
}

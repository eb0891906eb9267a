// Package services provides the business logic layer for the task backend.
// This file implements assignee/watcher management, including the
// asymmetric self-vs-other authorization rules.
package services

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/database"
	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/models"
	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/repository"
)

// RelationService authorizes and performs assignee and watcher mutations.
type RelationService struct {
	db        database.DB
	tasks     *repository.TaskRepository
	users     *repository.UserRepository
	relations *repository.RelationRepository
	privilege *PrivilegeEvaluator
}

// NewRelationService creates a new RelationService bound to the given handle.
func NewRelationService(db database.DB) *RelationService {
	return &RelationService{
		db:        db,
		tasks:     repository.NewTaskRepository(),
		users:     repository.NewUserRepository(),
		relations: repository.NewRelationRepository(),
		privilege: NewPrivilegeEvaluator(),
	}
}

// Mutate adds or removes a single (task, user) relation row of the given kind.
//
// Self-targeting follows the base task access rule. Targeting another user
// requires the task to belong to a group, and the caller to be the task's
// owner, the owner of the task's parent (for child tasks), or an admin of
// the task's group; when adding, the target must additionally already be a
// member of the group, preventing cross-group relationship pollution.
//
// Both directions are idempotent: adding an existing relation and removing a
// missing one are no-op successes.
func (s *RelationService) Mutate(ctx context.Context, taskID, targetUserID, callerID int, kind models.RelationKind, op models.RelationOp) error {
	if !kind.Valid() {
		return models.NewValidation("unknown relation kind")
	}
	if !op.Valid() {
		return models.NewValidation("unknown relation operation")
	}

	return database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		task, err := s.tasks.GetByID(ctx, tx, taskID)
		if err != nil {
			return models.NewServerError(err)
		}
		if task == nil {
			return models.NewNotFound("task not found")
		}

		if targetUserID == callerID {
			if !s.privilege.CanAccessTask(ctx, tx, task, callerID) {
				return models.NewInsufficientPrivilege("insufficient privileges")
			}
		} else {
			if err := s.authorizeOtherTarget(ctx, tx, task, targetUserID, callerID, op); err != nil {
				return err
			}
		}

		if op == models.RelationAdd {
			exists, err := s.users.Exists(ctx, tx, targetUserID)
			if err != nil {
				return models.NewServerError(err)
			}
			if !exists {
				return models.NewNotFound("user not found")
			}

			if err := s.relations.Add(ctx, tx, kind, taskID, targetUserID); err != nil {
				return models.NewServerError(err)
			}
			return nil
		}

		if err := s.relations.Remove(ctx, tx, kind, taskID, targetUserID); err != nil {
			return models.NewServerError(err)
		}
		return nil
	})
}

// authorizeOtherTarget applies the other-targeting rules: a task without a
// group can never hold anyone but its owner as assignee or watcher, and the
// caller needs an elevated position relative to the task.
func (s *RelationService) authorizeOtherTarget(ctx context.Context, q database.Querier, task *models.Task, targetUserID, callerID int, op models.RelationOp) error {
	if task.GroupID == nil {
		return models.NewInsufficientPrivilege("task does not belong to a group")
	}

	allowed := task.OwnerID == callerID ||
		s.privilege.IsGroupMember(ctx, q, *task.GroupID, callerID, true)

	if !allowed && task.ParentID != nil {
		parent, err := s.tasks.GetByID(ctx, q, *task.ParentID)
		if err != nil {
			return models.NewServerError(err)
		}
		allowed = parent != nil && parent.OwnerID == callerID
	}

	if !allowed {
		return models.NewInsufficientPrivilege("insufficient privileges")
	}

	if op == models.RelationAdd && !s.privilege.IsGroupMember(ctx, q, *task.GroupID, targetUserID, false) {
		return models.NewInsufficientPrivilege("target user must be a member of this group")
	}

	return nil
}

// ListRelated retrieves the users related to a task under the given kind.
// Read-only, same access rule as task retrieval.
func (s *RelationService) ListRelated(ctx context.Context, taskID, userID int, kind models.RelationKind) ([]models.User, error) {
	if !kind.Valid() {
		return nil, models.NewValidation("unknown relation kind")
	}

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

	users, err := s.relations.ListUsers(ctx, s.db, kind, taskID)
	if err != nil {
		return nil, models.NewServerError(err)
	}
	return users, nil
}

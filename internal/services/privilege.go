// Package services provides the business logic layer for the task backend.
// This file implements the privilege evaluator, the single capability-check
// component every mutating service consults before touching rows.
package services

import (
	"context"

	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/database"
	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/models"
	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/repository"
)

// PrivilegeLevel is the capability tag a caller is checked against.
type PrivilegeLevel int

const (
	// LevelOwner - the task's stored owner; group membership is irrelevant
	LevelOwner PrivilegeLevel = iota

	// LevelMember - any member of the task's group; false for group-less tasks
	LevelMember

	// LevelAdmin - an admin of the task's group; false for group-less tasks
	LevelAdmin
)

// PrivilegeEvaluator answers "can user U act at level L on task/group T".
// It is a pure decision component: it performs no writes and holds no state
// beyond its repositories.
//
// All reads go through the caller-supplied Querier so a decision made inside
// a transaction observes that transaction's snapshot.
//
// Failure policy: any underlying read error is treated as "not authorized"
// (fail closed) rather than propagated; a privilege decision must never leak
// on ambiguous state. A nonexistent task likewise evaluates to false - the
// existence check is the caller's responsibility, performed beforehand.
type PrivilegeEvaluator struct {
	tasks  *repository.TaskRepository
	groups *repository.GroupRepository
}

// NewPrivilegeEvaluator creates a new evaluator instance.
func NewPrivilegeEvaluator() *PrivilegeEvaluator {
	return &PrivilegeEvaluator{
		tasks:  repository.NewTaskRepository(),
		groups: repository.NewGroupRepository(),
	}
}

// Evaluate reports whether userID holds the given capability on the task.
//
//   - LevelOwner: true iff the task's stored owner id equals userID
//   - LevelMember/LevelAdmin: false if the task has no group; otherwise true
//     iff userID appears in that group's membership (admin role required for
//     LevelAdmin)
func (e *PrivilegeEvaluator) Evaluate(ctx context.Context, q database.Querier, level PrivilegeLevel, taskID, userID int) bool {
	task, err := e.tasks.GetByID(ctx, q, taskID)
	if err != nil || task == nil {
		return false
	}

	switch level {
	case LevelOwner:
		return task.OwnerID == userID
	case LevelMember, LevelAdmin:
		if task.GroupID == nil {
			return false
		}
		return e.IsGroupMember(ctx, q, *task.GroupID, userID, level == LevelAdmin)
	default:
		return false
	}
}

// IsGroupMember reports whether userID is a member of the group, optionally
// restricted to the admin role. Fails closed on read errors.
func (e *PrivilegeEvaluator) IsGroupMember(ctx context.Context, q database.Querier, groupID, userID int, requireAdmin bool) bool {
	role, found, err := e.groups.GetMemberRole(ctx, q, groupID, userID)
	if err != nil || !found {
		return false
	}
	if requireAdmin {
		return role == models.RoleAdmin
	}
	return true
}

// CanAccessTask applies the base access rule to an already-loaded task
// snapshot: a task with no group is accessible to its owner only; a task
// with a group requires membership in that group (ownership alone does not
// bypass the membership check).
func (e *PrivilegeEvaluator) CanAccessTask(ctx context.Context, q database.Querier, task *models.Task, userID int) bool {
	if task == nil {
		return false
	}
	if task.GroupID == nil {
		return task.OwnerID == userID
	}
	return e.IsGroupMember(ctx, q, *task.GroupID, userID, false)
}

// Package repository implements the database access layer for the task backend.
// This file handles the task_assigned and task_watchers relation sets.
package repository

import (
	"context"
	"fmt"

	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/database"
	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/models"
)

// RelationRepository handles assignee/watcher database operations.
// The two sets share a shape, so one repository serves both tables; the
// table name is resolved from the relation kind through a fixed mapping,
// never from caller input.
type RelationRepository struct{}

// NewRelationRepository creates a new instance of RelationRepository.
func NewRelationRepository() *RelationRepository {
	return &RelationRepository{}
}

// tableFor maps a relation kind to its table. Returns an error for any kind
// outside the two known sets so no caller value ever reaches the SQL text.
func tableFor(kind models.RelationKind) (string, error) {
	switch kind {
	case models.RelationAssigned:
		return "task_assigned", nil
	case models.RelationWatcher:
		return "task_watchers", nil
	default:
		return "", fmt.Errorf("unknown relation kind %q", kind)
	}
}

// Add inserts a relation row.
// Idempotent operation - duplicate relations are ignored.
//
// Database: Uses ON CONFLICT DO NOTHING for idempotency
func (r *RelationRepository) Add(ctx context.Context, q database.Querier, kind models.RelationKind, taskID, userID int) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO ` + table + ` (task_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (task_id, user_id) DO NOTHING
	`

	_, err = q.Exec(ctx, query, taskID, userID)
	return err
}

// Remove deletes a relation row.
// Removing a relation that does not exist is a no-op success.
func (r *RelationRepository) Remove(ctx context.Context, q database.Querier, kind models.RelationKind, taskID, userID int) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	query := `DELETE FROM ` + table + ` WHERE task_id = $1 AND user_id = $2`
	_, err = q.Exec(ctx, query, taskID, userID)
	return err
}

// ListUsers retrieves the users related to a task under the given kind,
// ordered by username.
func (r *RelationRepository) ListUsers(ctx context.Context, q database.Querier, kind models.RelationKind, taskID int) ([]models.User, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT u.id, u.username, u.created_at
		FROM users u
		JOIN ` + table + ` rel ON u.id = rel.user_id
		WHERE rel.task_id = $1
		ORDER BY u.username
	`

	rows, err := q.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		err := rows.Scan(&u.ID, &u.Username, &u.CreatedAt)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// DeleteForUserInGroup removes a user's assignment and watcher rows on every
// task belonging to a group. Used when a member leaves a group: only the
// removed user's personal relationship rows disappear; tasks, ownership and
// comments are left untouched.
func (r *RelationRepository) DeleteForUserInGroup(ctx context.Context, q database.Querier, groupID, userID int) error {
	assigned := `
		DELETE FROM task_assigned
		WHERE user_id = $1 AND task_id IN (SELECT id FROM tasks WHERE group_id = $2)
	`
	if _, err := q.Exec(ctx, assigned, userID, groupID); err != nil {
		return err
	}

	watchers := `
		DELETE FROM task_watchers
		WHERE user_id = $1 AND task_id IN (SELECT id FROM tasks WHERE group_id = $2)
	`
	_, err := q.Exec(ctx, watchers, userID, groupID)
	return err
}

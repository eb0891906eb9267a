// Package repository implements the database access layer for the task backend.
// This file handles task rows, including the child/sibling queries and the
// bulk updates the hierarchy cascades rely on.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/database"
	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/models"
)

// TaskRepository handles task-related database operations.
type TaskRepository struct{}

// NewTaskRepository creates a new instance of TaskRepository.
func NewTaskRepository() *TaskRepository {
	return &TaskRepository{}
}

const taskColumns = `id, description, due_date, owner_id, group_id, parent_id, completed, created_at`

func scanTask(row pgx.Row, t *models.Task) error {
	return row.Scan(
		&t.ID, &t.Description, &t.DueDate, &t.OwnerID,
		&t.GroupID, &t.ParentID, &t.Completed, &t.CreatedAt,
	)
}

// Insert creates a new task row.
//
// Side Effects: Populates task.ID, task.Completed and task.CreatedAt with
// database values (completed comes back as a proper boolean).
func (r *TaskRepository) Insert(ctx context.Context, q database.Querier, t *models.Task) error {
	query := `
		INSERT INTO tasks (description, due_date, owner_id, group_id, parent_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, completed, created_at
	`

	return q.QueryRow(ctx, query, t.Description, t.DueDate, t.OwnerID, t.GroupID, t.ParentID).
		Scan(&t.ID, &t.Completed, &t.CreatedAt)
}

// GetByID retrieves a task row. Returns (nil, nil) when the task does not
// exist; the caller decides how a missing row is classified.
func (r *TaskRepository) GetByID(ctx context.Context, q database.Querier, id int) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	var t models.Task
	err := scanTask(q.QueryRow(ctx, query, id), &t)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// Update writes the mutable columns of a task row. Owner, parent and
// creation time are immutable and never part of the statement.
func (r *TaskRepository) Update(ctx context.Context, q database.Querier, t *models.Task) error {
	query := `
		UPDATE tasks
		SET description = $1, due_date = $2, group_id = $3, completed = $4
		WHERE id = $5
	`

	_, err := q.Exec(ctx, query, t.Description, t.DueDate, t.GroupID, t.Completed, t.ID)
	return err
}

// Delete removes a task row by ID.
//
// Database: ON DELETE CASCADE removes child tasks and every comment,
// assignment and watcher row of the task and its children.
func (r *TaskRepository) Delete(ctx context.Context, q database.Querier, id int) error {
	query := `DELETE FROM tasks WHERE id = $1`
	_, err := q.Exec(ctx, query, id)
	return err
}

// ListChildren retrieves all direct children of a task ordered by creation
// time ascending. Also used to gather sibling snapshots for the parent
// completion recomputation.
func (r *TaskRepository) ListChildren(ctx context.Context, q database.Querier, parentID int) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE parent_id = $1 ORDER BY created_at, id`

	rows, err := q.Query(ctx, query, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var children []models.Task
	for rows.Next() {
		var t models.Task
		err := rows.Scan(
			&t.ID, &t.Description, &t.DueDate, &t.OwnerID,
			&t.GroupID, &t.ParentID, &t.Completed, &t.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		children = append(children, t)
	}

	return children, rows.Err()
}

// UpdateChildrenGroup forces the group id of every child of a task.
// Cascade: a child's group always tracks its parent's group.
func (r *TaskRepository) UpdateChildrenGroup(ctx context.Context, q database.Querier, parentID int, groupID *int) error {
	query := `UPDATE tasks SET group_id = $1 WHERE parent_id = $2`
	_, err := q.Exec(ctx, query, groupID, parentID)
	return err
}

// UpdateChildrenCompleted forces the completion flag of every child of a
// task. Cascade: a root's completion is authoritative over its children.
func (r *TaskRepository) UpdateChildrenCompleted(ctx context.Context, q database.Querier, parentID int, completed bool) error {
	query := `UPDATE tasks SET completed = $1 WHERE parent_id = $2`
	_, err := q.Exec(ctx, query, completed, parentID)
	return err
}

// SetCompleted writes just the completion flag of a single task.
// Used when a child state change forces its parent's flag.
func (r *TaskRepository) SetCompleted(ctx context.Context, q database.Querier, taskID int, completed bool) error {
	query := `UPDATE tasks SET completed = $1 WHERE id = $2`
	_, err := q.Exec(ctx, query, completed, taskID)
	return err
}

// Package repository implements the database access layer for the task backend.
// This file handles task comment rows.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/database"
	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/models"
)

// CommentRepository handles comment-related database operations.
type CommentRepository struct{}

// NewCommentRepository creates a new instance of CommentRepository.
func NewCommentRepository() *CommentRepository {
	return &CommentRepository{}
}

// Insert creates a new comment row.
//
// Side Effects: Populates comment.ID and comment.CreatedAt with database values
func (r *CommentRepository) Insert(ctx context.Context, q database.Querier, c *models.TaskComment) error {
	query := `
		INSERT INTO task_comments (task_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	return q.QueryRow(ctx, query, c.TaskID, c.UserID, c.Content).
		Scan(&c.ID, &c.CreatedAt)
}

// GetWithTask retrieves a comment joined with its owning task in a single
// read, so the deletion privilege check and the row it concerns come from
// the same snapshot. Returns (nil, nil, nil) when the comment does not exist.
func (r *CommentRepository) GetWithTask(ctx context.Context, q database.Querier, commentID int) (*models.TaskComment, *models.Task, error) {
	query := `
		SELECT c.id, c.task_id, c.user_id, c.content, c.created_at,
		       t.id, t.description, t.due_date, t.owner_id, t.group_id, t.parent_id, t.completed, t.created_at
		FROM task_comments c
		JOIN tasks t ON t.id = c.task_id
		WHERE c.id = $1
	`

	var c models.TaskComment
	var t models.Task
	err := q.QueryRow(ctx, query, commentID).Scan(
		&c.ID, &c.TaskID, &c.UserID, &c.Content, &c.CreatedAt,
		&t.ID, &t.Description, &t.DueDate, &t.OwnerID,
		&t.GroupID, &t.ParentID, &t.Completed, &t.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	return &c, &t, nil
}

// Delete removes a comment row by ID.
func (r *CommentRepository) Delete(ctx context.Context, q database.Querier, commentID int) error {
	query := `DELETE FROM task_comments WHERE id = $1`
	_, err := q.Exec(ctx, query, commentID)
	return err
}

// ListByTask retrieves all comments on a task ordered by creation time
// ascending, each annotated with the author's username.
func (r *CommentRepository) ListByTask(ctx context.Context, q database.Querier, taskID int) ([]models.CommentView, error) {
	query := `
		SELECT c.id, c.task_id, c.user_id, c.content, c.created_at, u.username AS author
		FROM task_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.task_id = $1
		ORDER BY c.created_at, c.id
	`

	rows, err := q.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []models.CommentView
	for rows.Next() {
		var c models.CommentView
		err := rows.Scan(&c.ID, &c.TaskID, &c.UserID, &c.Content, &c.CreatedAt, &c.Author)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}

	return comments, rows.Err()
}

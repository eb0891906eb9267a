// Package repository implements the database access layer for the task backend.
// This file handles group rows and group membership rows.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/database"
	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/models"
)

// GroupRepository handles group-related database operations.
// Manages group rows and the group_members join table.
type GroupRepository struct{}

// NewGroupRepository creates a new instance of GroupRepository.
func NewGroupRepository() *GroupRepository {
	return &GroupRepository{}
}

// Insert creates a new group row.
//
// Database: Name must be unique (enforced by UNIQUE constraint); a duplicate
// surfaces as *pgconn.PgError with code 23505 for the caller to classify.
// Side Effects: Populates group.ID and group.CreatedAt with database values
func (r *GroupRepository) Insert(ctx context.Context, q database.Querier, group *models.Group) error {
	query := `
		INSERT INTO groups (name, description, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	return q.QueryRow(ctx, query, group.Name, group.Description, group.OwnerID).
		Scan(&group.ID, &group.CreatedAt)
}

// GetByID retrieves a group row. Returns (nil, nil) when the group does not
// exist; the caller decides how a missing row is classified.
func (r *GroupRepository) GetByID(ctx context.Context, q database.Querier, id int) (*models.Group, error) {
	query := `SELECT id, name, description, owner_id, created_at FROM groups WHERE id = $1`

	var g models.Group
	err := q.QueryRow(ctx, query, id).Scan(&g.ID, &g.Name, &g.Description, &g.OwnerID, &g.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &g, nil
}

// GetWithMemberCount retrieves the joined projection of a group and its
// member count. Used to return the full picture right after creation.
func (r *GroupRepository) GetWithMemberCount(ctx context.Context, q database.Querier, id int) (*models.GroupWithMembers, error) {
	query := `
		SELECT g.id, g.name, g.description, g.owner_id, g.created_at,
		       COUNT(gm.user_id) AS member_count
		FROM groups g
		LEFT JOIN group_members gm ON g.id = gm.group_id
		WHERE g.id = $1
		GROUP BY g.id, g.name, g.description, g.owner_id, g.created_at
	`

	var g models.GroupWithMembers
	err := q.QueryRow(ctx, query, id).Scan(
		&g.ID, &g.Name, &g.Description, &g.OwnerID, &g.CreatedAt, &g.MemberCount,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &g, nil
}

// ListAll retrieves all groups with member counts.
//
// Database: LEFT JOIN with group_members to count members
func (r *GroupRepository) ListAll(ctx context.Context, q database.Querier) ([]models.GroupWithMembers, error) {
	query := `
		SELECT g.id, g.name, g.description, g.owner_id, g.created_at,
		       COUNT(gm.user_id) AS member_count
		FROM groups g
		LEFT JOIN group_members gm ON g.id = gm.group_id
		GROUP BY g.id, g.name, g.description, g.owner_id, g.created_at
		ORDER BY g.name
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.GroupWithMembers
	for rows.Next() {
		var g models.GroupWithMembers
		err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.OwnerID, &g.CreatedAt, &g.MemberCount)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}

	return groups, rows.Err()
}

// Delete removes a group row by ID.
//
// Database: ON DELETE CASCADE removes group_members rows and all tasks with
// this group id (and, transitively, those tasks' comments and relations).
// Tasks with a different or null group id are never touched.
func (r *GroupRepository) Delete(ctx context.Context, q database.Querier, groupID int) error {
	query := `DELETE FROM groups WHERE id = $1`
	_, err := q.Exec(ctx, query, groupID)
	return err
}

// InsertMember adds a user to a group with the given role.
func (r *GroupRepository) InsertMember(ctx context.Context, q database.Querier, groupID, userID int, role string) error {
	query := `
		INSERT INTO group_members (group_id, user_id, role)
		VALUES ($1, $2, $3)
	`

	_, err := q.Exec(ctx, query, groupID, userID, role)
	return err
}

// GetMemberRole looks up the role of a user within a group.
// Returns ("", false, nil) when the user is not a member.
func (r *GroupRepository) GetMemberRole(ctx context.Context, q database.Querier, groupID, userID int) (string, bool, error) {
	query := `SELECT role FROM group_members WHERE group_id = $1 AND user_id = $2`

	var role string
	err := q.QueryRow(ctx, query, groupID, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return role, true, nil
}

// DeleteMember removes a user's membership row from a group.
func (r *GroupRepository) DeleteMember(ctx context.Context, q database.Querier, groupID, userID int) error {
	query := `DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`
	_, err := q.Exec(ctx, query, groupID, userID)
	return err
}

// ListMembers retrieves all members of a group joined with their user
// records, ordered by join time.
func (r *GroupRepository) ListMembers(ctx context.Context, q database.Querier, groupID int) ([]models.GroupMemberView, error) {
	query := `
		SELECT gm.user_id, u.username, gm.role, gm.created_at
		FROM group_members gm
		JOIN users u ON u.id = gm.user_id
		WHERE gm.group_id = $1
		ORDER BY gm.created_at, gm.user_id
	`

	rows, err := q.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.GroupMemberView
	for rows.Next() {
		var m models.GroupMemberView
		err := rows.Scan(&m.UserID, &m.Username, &m.Role, &m.JoinedAt)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}

	return members, rows.Err()
}

// Package services provides the business logic layer for the task backend.
// This file implements group lifecycle and membership management, including
// the cascading effects of membership removal on task relationship rows.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/database"
	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/models"
	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/repository"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pgUniqueViolation = "23505"

// GroupService creates and destroys groups and membership rows.
//
// Invariant: a group always has at least one admin - its creator - until the
// group itself is deleted; the creator can never be removed as a member
// while the group exists.
type GroupService struct {
	db        database.DB
	groups    *repository.GroupRepository
	users     *repository.UserRepository
	relations *repository.RelationRepository
	privilege *PrivilegeEvaluator
}

// NewGroupService creates a new GroupService bound to the given handle.
func NewGroupService(db database.DB) *GroupService {
	return &GroupService{
		db:        db,
		groups:    repository.NewGroupRepository(),
		users:     repository.NewUserRepository(),
		relations: repository.NewRelationRepository(),
		privilege: NewPrivilegeEvaluator(),
	}
}

// CreateGroup inserts a group and its creator's admin membership row in one
// transaction, then re-reads the joined projection to return.
//
// A duplicate name surfaces as Conflict; any other insert failure rolls back
// and propagates as a server error.
func (s *GroupService) CreateGroup(ctx context.Context, name string, description *string, ownerID int) (*models.GroupWithMembers, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidation("group name is required")
	}

	group := &models.Group{
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
	}

	var created *models.GroupWithMembers
	err := database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := s.groups.Insert(ctx, tx, group); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				return models.NewConflict("group name already exists")
			}
			return models.NewServerError(err)
		}

		// The creator joins immediately as admin.
		if err := s.groups.InsertMember(ctx, tx, group.ID, ownerID, models.RoleAdmin); err != nil {
			return models.NewServerError(err)
		}

		row, err := s.groups.GetWithMemberCount(ctx, tx, group.ID)
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

// DeleteGroup removes a group. The caller must hold the admin role.
//
// The single DELETE relies on the store's cascading rules to also remove all
// membership rows and all tasks owned by the group (and, transitively, those
// tasks' comments, assignments and watchers). Tasks with no group are never
// touched.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID, userID int) error {
	return database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		group, err := s.groups.GetByID(ctx, tx, groupID)
		if err != nil {
			return models.NewServerError(err)
		}
		if group == nil {
			return models.NewNotFound("group not found")
		}

		if !s.privilege.IsGroupMember(ctx, tx, groupID, userID, true) {
			return models.NewInsufficientPrivilege("insufficient privileges")
		}

		if err := s.groups.Delete(ctx, tx, groupID); err != nil {
			return models.NewServerError(err)
		}
		return nil
	})
}

// AddUserToGroup adds targetUserID to a group with the member role. The
// caller must be an admin of the group, and the target must reference an
// existing user that is not already a member.
func (s *GroupService) AddUserToGroup(ctx context.Context, groupID, targetUserID, callerID int) error {
	return database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		group, err := s.groups.GetByID(ctx, tx, groupID)
		if err != nil {
			return models.NewServerError(err)
		}
		if group == nil {
			return models.NewNotFound("group not found")
		}

		if !s.privilege.IsGroupMember(ctx, tx, groupID, callerID, true) {
			return models.NewInsufficientPrivilege("insufficient privileges")
		}

		exists, err := s.users.Exists(ctx, tx, targetUserID)
		if err != nil {
			return models.NewServerError(err)
		}
		if !exists {
			return models.NewNotFound("user not found")
		}

		if _, member, err := s.groups.GetMemberRole(ctx, tx, groupID, targetUserID); err != nil {
			return models.NewServerError(err)
		} else if member {
			return models.NewConflict("user is already a member of this group")
		}

		if err := s.groups.InsertMember(ctx, tx, groupID, targetUserID, models.RoleMember); err != nil {
			return models.NewServerError(err)
		}
		return nil
	})
}

// RemoveUserFromGroup removes targetUserID's membership. The caller must be
// an admin; the group's creator can never be removed while the group exists.
//
// On success, within the same transaction, the target's assignment and
// watcher rows on every task of this group are deleted before the membership
// row itself. Tasks, their descriptions, ownership and comments are left
// untouched.
func (s *GroupService) RemoveUserFromGroup(ctx context.Context, groupID, targetUserID, callerID int) error {
	return database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		group, err := s.groups.GetByID(ctx, tx, groupID)
		if err != nil {
			return models.NewServerError(err)
		}
		if group == nil {
			return models.NewNotFound("group not found")
		}

		if !s.privilege.IsGroupMember(ctx, tx, groupID, callerID, true) {
			return models.NewInsufficientPrivilege("insufficient privileges")
		}

		if _, member, err := s.groups.GetMemberRole(ctx, tx, groupID, targetUserID); err != nil {
			return models.NewServerError(err)
		} else if !member {
			return models.NewNotFound("user is not a member of this group")
		}

		if targetUserID == group.OwnerID {
			return models.NewInsufficientPrivilege("cannot remove group creator")
		}

		if err := s.relations.DeleteForUserInGroup(ctx, tx, groupID, targetUserID); err != nil {
			return models.NewServerError(err)
		}

		if err := s.groups.DeleteMember(ctx, tx, groupID, targetUserID); err != nil {
			return models.NewServerError(err)
		}
		return nil
	})
}

// ListGroups retrieves all groups with member counts. Read-only.
func (s *GroupService) ListGroups(ctx context.Context) ([]models.GroupWithMembers, error) {
	groups, err := s.groups.ListAll(ctx, s.db)
	if err != nil {
		return nil, models.NewServerError(err)
	}
	return groups, nil
}

// ListGroupMembers retrieves a group's membership with roles. The caller
// must themselves be a member of the group.
func (s *GroupService) ListGroupMembers(ctx context.Context, groupID, callerID int) ([]models.GroupMemberView, error) {
	group, err := s.groups.GetByID(ctx, s.db, groupID)
	if err != nil {
		return nil, models.NewServerError(err)
	}
	if group == nil {
		return nil, models.NewNotFound("group not found")
	}

	if !s.privilege.IsGroupMember(ctx, s.db, groupID, callerID, false) {
		return nil, models.NewInsufficientPrivilege("insufficient privileges")
	}

	members, err := s.groups.ListMembers(ctx, s.db, groupID)
	if err != nil {
		return nil, models.NewServerError(err)
	}
	return members, nil
}

// Package services_test provides unit tests for the services layer.
// This file covers assignee/watcher management and its asymmetric
// self-vs-other authorization rules.
package services_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/models"
	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/services"
)

// TestMutateRelation_SelfAssign verifies a group member can assign themselves
// to a group task.
func TestMutateRelation_SelfAssign(t *testing.T) {
	mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT(.+)FROM tasks WHERE id").
		WithArgs(1).
		WillReturnRows(taskRow(1, "release", 10, intPtr(5), nil, false))
	mock.ExpectQuery("SELECT role FROM group_members").
		WithArgs(5, 7).
		WillReturnRows(roleRow("member"))
	mock.ExpectQuery("SELECT 1 FROM users WHERE id").
		WithArgs(7).
		WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectExec("INSERT INTO task_assigned").
		WithArgs(1, 7).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	svc := services.NewRelationService(mock)

	err := svc.Mutate(context.Background(), 1, 7, 7, models.RelationAssigned, models.RelationAdd)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestMutateRelation_OwnerAddsWatcher verifies the task owner can add another
// group member as a watcher; the target's membership is checked first.
func TestMutateRelation_OwnerAddsWatcher(t *testing.T) {
	mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT(.+)FROM tasks WHERE id").
		WithArgs(1).
		WillReturnRows(taskRow(1, "release", 7, intPtr(5), nil, false))
	// Target membership gate.
	mock.ExpectQuery("SELECT role FROM group_members").
		WithArgs(5, 8).
		WillReturnRows(roleRow("member"))
	mock.ExpectQuery("SELECT 1 FROM users WHERE id").
		WithArgs(8).
		WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectExec("INSERT INTO task_watchers").
		WithArgs(1, 8).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	svc := services.NewRelationService(mock)

	err := svc.Mutate(context.Background(), 1, 8, 7, models.RelationWatcher, models.RelationAdd)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestMutateRelation_AddExisting verifies adding a relation that already
// exists is a no-op success: the conflict-absorbing insert touches zero rows
// and the transaction still commits.
func TestMutateRelation_AddExisting(t *testing.T) {
	mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT(.+)FROM tasks WHERE id").
		WithArgs(1).
		WillReturnRows(taskRow(1, "release", 7, nil, nil, false))
	mock.ExpectQuery("SELECT 1 FROM users WHERE id").
		WithArgs(7).
		WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectExec("INSERT INTO task_assigned").
		WithArgs(1, 7).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectCommit()

	svc := services.NewRelationService(mock)

	err := svc.Mutate(context.Background(), 1, 7, 7, models.RelationAssigned, models.RelationAdd)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestMutateRelation_PersonalTaskOtherTarget verifies a task without a group
// can never hold anyone but its owner in a relation set.
func TestMutateRelation_PersonalTaskOtherTarget(t *testing.T) {
	mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT(.+)FROM tasks WHERE id").
		WithArgs(1).
		WillReturnRows(taskRow(1, "release", 7, nil, nil, false))
	mock.ExpectRollback()

	svc := services.NewRelationService(mock)

	err := svc.Mutate(context.Background(), 1, 8, 7, models.RelationAssigned, models.RelationAdd)

	require.Error(t, err)
	assert.Equal(t, models.KindInsufficientPrivilege, models.KindOf(err))
	assert.EqualError(t, err, "task does not belong to a group")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestMutateRelation_TargetOutsideGroup verifies adding a non-member target
// is rejected so relation rows never point outside the group. The membership
// gate runs before the existence check, so a nonexistent target user takes
// this same path.
func TestMutateRelation_TargetOutsideGroup(t *testing.T) {
	mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT(.+)FROM tasks WHERE id").
		WithArgs(1).
		WillReturnRows(taskRow(1, "release", 7, intPtr(5), nil, false))
	mock.ExpectQuery("SELECT role FROM group_members").
		WithArgs(5, 42).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	svc := services.NewRelationService(mock)

	err := svc.Mutate(context.Background(), 1, 42, 7, models.RelationAssigned, models.RelationAdd)

	require.Error(t, err)
	assert.Equal(t, models.KindInsufficientPrivilege, models.KindOf(err))
	assert.EqualError(t, err, "target user must be a member of this group")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestMutateRelation_ParentOwner verifies the owner of a child task's parent
// may manage relations on the child even without owning it or holding admin.
func TestMutateRelation_ParentOwner(t *testing.T) {
	mock := newMock(t)

	// Child 8 (parent 4) owned by user 9; caller 7 owns the parent.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT(.+)FROM tasks WHERE id").
		WithArgs(8).
		WillReturnRows(taskRow(8, "ship artifacts", 9, intPtr(5), intPtr(4), false))
	mock.ExpectQuery("SELECT role FROM group_members").
		WithArgs(5, 7).
		WillReturnRows(roleRow("member"))
	mock.ExpectQuery("SELECT(.+)FROM tasks WHERE id").
		WithArgs(4).
		WillReturnRows(taskRow(4, "release", 7, intPtr(5), nil, false))
	mock.ExpectExec("DELETE FROM task_assigned WHERE task_id").
		WithArgs(8, 11).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCommit()

	svc := services.NewRelationService(mock)

	err := svc.Mutate(context.Background(), 8, 11, 7, models.RelationAssigned, models.RelationRemove)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestMutateRelation_InvalidKind verifies enum validation fires before any
// query.
func TestMutateRelation_InvalidKind(t *testing.T) {
	mock := newMock(t)
	svc := services.NewRelationService(mock)

	err := svc.Mutate(context.Background(), 1, 7, 7, models.RelationKind("owner"), models.RelationAdd)

	require.Error(t, err)
	assert.Equal(t, models.KindValidation, models.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestMutateRelation_UnknownTarget verifies adding a relation for a
// nonexistent user reports not found.
func TestMutateRelation_UnknownTarget(t *testing.T) {
	mock := newMock(t)

	// Self-target with a stale session id: the task read succeeds for the
	// owner but the user row is gone.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT(.+)FROM tasks WHERE id").
		WithArgs(1).
		WillReturnRows(taskRow(1, "release", 7, nil, nil, false))
	mock.ExpectQuery("SELECT 1 FROM users WHERE id").
		WithArgs(7).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	svc := services.NewRelationService(mock)

	err := svc.Mutate(context.Background(), 1, 7, 7, models.RelationAssigned, models.RelationAdd)

	require.Error(t, err)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
	assert.EqualError(t, err, "user not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestListRelated verifies the read path returns related users ordered by
// username without an explicit transaction.
func TestListRelated(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery("SELECT(.+)FROM tasks WHERE id").
		WithArgs(1).
		WillReturnRows(taskRow(1, "release", 7, nil, nil, false))
	mock.ExpectQuery("SELECT u.id, u.username, u.created_at(.+)JOIN task_watchers").
		WithArgs(1).
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "created_at"}).
			AddRow(8, "bob", testTime).
			AddRow(9, "carol", testTime))

	svc := services.NewRelationService(mock)

	users, err := svc.ListRelated(context.Background(), 1, 7, models.RelationWatcher)

	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bob", users[0].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

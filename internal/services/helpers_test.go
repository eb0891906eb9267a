// Package services_test provides unit tests for the services layer.
// Tests use pgxmock v4 for database mocking; this file holds the shared
// fixtures and row builders.
package services_test

import (
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

// testTime is the fixed timestamp used across row fixtures.
var testTime = time.Date(2025, 10, 25, 12, 0, 0, 0, time.UTC)

// newMock creates a pgxmock pool and registers its cleanup.
func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return mock
}

// taskColumns mirrors the column order of the tasks SELECT list.
var taskColumns = []string{
	"id", "description", "due_date", "owner_id", "group_id", "parent_id", "completed", "created_at",
}

// taskRow builds a single-task result. Nullable columns take nil.
func taskRow(id int, description string, ownerID int, groupID, parentID interface{}, completed bool) *pgxmock.Rows {
	return pgxmock.NewRows(taskColumns).
		AddRow(id, description, nil, ownerID, groupID, parentID, completed, testTime)
}

// roleRow builds a group_members role lookup result.
func roleRow(role string) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"role"}).AddRow(role)
}

// groupColumns mirrors the column order of the groups SELECT list.
var groupColumns = []string{"id", "name", "description", "owner_id", "created_at"}

// groupRow builds a single-group result.
func groupRow(id int, name string, ownerID int) *pgxmock.Rows {
	return pgxmock.NewRows(groupColumns).AddRow(id, name, nil, ownerID, testTime)
}

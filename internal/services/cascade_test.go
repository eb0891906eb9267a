// Package services_test provides unit tests for the services layer.
// This file covers the hierarchy cascade rules as pure state transitions,
// independent of the store.
package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/models"
	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/services"
)

func intPtr(v int) *int { return &v }

func task(id int, parentID, groupID *int, completed bool) models.Task {
	return models.Task{
		ID:          id,
		Description: "task",
		OwnerID:     1,
		GroupID:     groupID,
		ParentID:    parentID,
		Completed:   completed,
	}
}

// TestPlanCascade_RootGroupChange verifies that changing a root's group
// propagates to its children, and that an unchanged group does not.
func TestPlanCascade_RootGroupChange(t *testing.T) {
	prev := task(1, nil, nil, false)
	next := task(1, nil, intPtr(3), false)

	plan := services.PlanCascade(prev, next, nil)

	assert.True(t, plan.ChildGroup, "children should follow the new group")
	assert.False(t, plan.ChildCompleted)
	assert.Nil(t, plan.ParentCompleted)

	// Same group on both sides - nothing to do.
	same := services.PlanCascade(prev, task(1, nil, nil, false), nil)
	assert.Equal(t, services.CascadePlan{}, same)
}

// TestPlanCascade_RootCompletionIsAuthoritative verifies that a root's
// completion change forces every child, in both directions.
func TestPlanCascade_RootCompletionIsAuthoritative(t *testing.T) {
	for _, completed := range []bool{true, false} {
		prev := task(1, nil, nil, !completed)
		next := task(1, nil, nil, completed)

		plan := services.PlanCascade(prev, next, nil)

		assert.True(t, plan.ChildCompleted, "completed=%v should force children", completed)
		assert.Nil(t, plan.ParentCompleted, "a root has no parent to recompute")
	}
}

// TestPlanCascade_ChildCompleted verifies the sibling recomputation when a
// child is marked completed: the parent completes only when every sibling
// (the updated child included) is completed.
func TestPlanCascade_ChildCompleted(t *testing.T) {
	parentID := intPtr(10)
	prev := task(2, parentID, nil, false)
	next := task(2, parentID, nil, true)

	// One sibling still incomplete - parent unchanged.
	siblings := []models.Task{next, task(3, parentID, nil, false)}
	plan := services.PlanCascade(prev, next, siblings)
	assert.Nil(t, plan.ParentCompleted)

	// Every sibling completed - parent forced complete.
	siblings = []models.Task{next, task(3, parentID, nil, true)}
	plan = services.PlanCascade(prev, next, siblings)
	require.NotNil(t, plan.ParentCompleted)
	assert.True(t, *plan.ParentCompleted)
}

// TestPlanCascade_ChildIncomplete verifies that marking a child incomplete
// unconditionally forces the parent incomplete, regardless of siblings.
func TestPlanCascade_ChildIncomplete(t *testing.T) {
	parentID := intPtr(10)
	prev := task(2, parentID, nil, true)
	next := task(2, parentID, nil, false)

	plan := services.PlanCascade(prev, next, nil)

	require.NotNil(t, plan.ParentCompleted)
	assert.False(t, *plan.ParentCompleted)
}

// TestPlanCascade_ChildNoCompletionChange verifies that a child update that
// leaves the completion flag alone produces no cascade.
func TestPlanCascade_ChildNoCompletionChange(t *testing.T) {
	parentID := intPtr(10)
	prev := task(2, parentID, nil, true)
	next := task(2, parentID, nil, true)
	next.Description = "renamed"

	plan := services.PlanCascade(prev, next, nil)

	assert.Equal(t, services.CascadePlan{}, plan)
}

// TestParentCompletionAfterRemoval verifies the recomputation after a child
// deletion: zero remaining siblings or all completed forces the parent
// completed; any incomplete sibling forces it incomplete.
func TestParentCompletionAfterRemoval(t *testing.T) {
	parentID := intPtr(10)

	assert.True(t, services.ParentCompletionAfterRemoval(nil),
		"no remaining children should complete the parent")

	remaining := []models.Task{task(3, parentID, nil, true), task(4, parentID, nil, true)}
	assert.True(t, services.ParentCompletionAfterRemoval(remaining))

	remaining = append(remaining, task(5, parentID, nil, false))
	assert.False(t, services.ParentCompletionAfterRemoval(remaining))
}

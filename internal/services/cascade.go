// Package services provides the business logic layer for the task backend.
// This file contains the hierarchy cascade rules as pure state-transition
// functions so they can be unit-tested independent of the store.
package services

import "github.com/zi-kai-lin/stark-todo-backend-sub000/internal/models"

// CascadePlan describes the secondary mutations a task update requires to
// keep the parent/child invariants intact. A zero plan means no cascade.
type CascadePlan struct {
	// ChildGroup: propagate the task's new group id to all of its children.
	ChildGroup bool

	// ChildCompleted: force the task's new completion flag onto all of its
	// children. A root's completion is authoritative over its children and
	// takes precedence over any sibling recomputation.
	ChildCompleted bool

	// ParentCompleted, when non-nil, is the value the parent's completion
	// flag must be forced to.
	ParentCompleted *bool
}

// PlanCascade computes the cascade required after updating a task from prev
// to next. For a child task whose completion changed to true, siblings must
// hold the post-update snapshots of every task sharing the parent (the
// updated task included); the other branches ignore it.
//
// Rules:
//   - root, group changed: children's group ids follow
//   - root, completion changed: children's completion flags are forced
//   - child, completed -> true: parent completes iff every sibling is completed
//   - child, completed -> false: parent is unconditionally forced incomplete
func PlanCascade(prev, next models.Task, siblings []models.Task) CascadePlan {
	var plan CascadePlan

	completionChanged := prev.Completed != next.Completed

	if next.IsRoot() {
		if !groupEqual(prev.GroupID, next.GroupID) {
			plan.ChildGroup = true
		}
		if completionChanged {
			plan.ChildCompleted = true
		}
		return plan
	}

	if !completionChanged {
		return plan
	}

	if !next.Completed {
		// A single incomplete child always makes its root incomplete.
		f := false
		plan.ParentCompleted = &f
		return plan
	}

	for _, s := range siblings {
		if !s.Completed {
			return plan
		}
	}
	t := true
	plan.ParentCompleted = &t
	return plan
}

// ParentCompletionAfterRemoval computes the parent's completion flag after a
// child was deleted, from the remaining sibling snapshots: zero remaining
// siblings, or all remaining siblings completed, completes the parent; any
// incomplete sibling forces it incomplete.
func ParentCompletionAfterRemoval(remaining []models.Task) bool {
	for _, s := range remaining {
		if !s.Completed {
			return false
		}
	}
	return true
}

// groupEqual compares two nullable group ids.
func groupEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Package models defines the domain entities and data transfer objects for
// the task backend. It includes database models mapped to PostgreSQL tables,
// input DTOs for the service layer, and enriched view models for API output.
package models

import "time"

// ============================================================================
// Domain Models (Database Entities)
// ============================================================================

// User represents a system user account.
// Credentials are owned by the auth subsystem; the task core only ever
// references users by id and never mutates them.
//
// Database Table: users
// Security Note: PasswordHash must never be exposed in API responses or logs
type User struct {
	ID           int       `db:"id" json:"id"`                  // Primary key, auto-increment
	Username     string    `db:"username" json:"username"`      // Unique, used for login
	PasswordHash string    `db:"password_hash" json:"-"`        // bcrypt hashed password
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`   // Account creation timestamp
}

// Group represents a collaborative unit that can own tasks.
// The creator is recorded on the row and can never be removed from the
// membership while the group exists; deleting the group removes its member
// rows and its tasks through FK cascades.
//
// Database Table: groups
type Group struct {
	ID          int       `db:"id" json:"id"`                   // Primary key, auto-increment
	Name        string    `db:"name" json:"name"`               // Globally unique group name
	Description *string   `db:"description" json:"description"` // Optional description
	OwnerID     int       `db:"owner_id" json:"ownerId"`        // Creator, foreign key to users.id
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`    // Timestamp when group was created
}

// Group member roles. Every group has at least one admin (its creator) for
// as long as the group exists.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// GroupMember represents membership of a user in a group.
// Many-to-many relationship between users and groups with a role scalar.
//
// Database Table: group_members with composite primary key
type GroupMember struct {
	GroupID   int       `db:"group_id" json:"groupId"`     // Foreign key to groups table
	UserID    int       `db:"user_id" json:"userId"`       // Foreign key to users table
	Role      string    `db:"role" json:"role"`            // "admin" or "member"
	CreatedAt time.Time `db:"created_at" json:"createdAt"` // Timestamp when user joined
}

// Task represents a single todo item, personal or group-owned.
//
// A task is either a root (ParentID nil) or a child (ParentID set); the
// classification is immutable after creation. A child's GroupID always
// equals its parent's GroupID and is never independently settable.
//
// Database Table: tasks
type Task struct {
	ID          int        `db:"id" json:"id"`                // Primary key, auto-increment
	Description string     `db:"description" json:"description"` // Non-empty text
	DueDate     *time.Time `db:"due_date" json:"dueDate"`     // Optional deadline (nullable)
	OwnerID     int        `db:"owner_id" json:"ownerId"`     // Creator, immutable after creation
	GroupID     *int       `db:"group_id" json:"groupId"`     // Owning group (nullable)
	ParentID    *int       `db:"parent_id" json:"parentId"`   // Parent task for children (nullable)
	Completed   bool       `db:"completed" json:"completed"`  // Completion flag
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"` // Creation timestamp
}

// IsRoot reports whether the task has no parent.
func (t *Task) IsRoot() bool {
	return t.ParentID == nil
}

// TaskComment represents a comment on a task.
// Comments are immutable after creation and only ever deleted individually
// or through the owning task's cascade.
//
// Database Table: task_comments
type TaskComment struct {
	ID        int       `db:"id" json:"id"`                // Primary key
	TaskID    int       `db:"task_id" json:"taskId"`       // Foreign key to tasks.id
	UserID    int       `db:"user_id" json:"userId"`       // Comment author
	Content   string    `db:"content" json:"content"`      // Non-empty text
	CreatedAt time.Time `db:"created_at" json:"createdAt"` // Creation timestamp
}

// RelationKind selects one of the two independent per-user task relation
// sets. Membership in a set is boolean with no extra attributes.
type RelationKind string

const (
	RelationAssigned RelationKind = "assigned" // active responsibility
	RelationWatcher  RelationKind = "watcher"  // passive interest
)

// Valid reports whether the kind names one of the two relation sets.
func (k RelationKind) Valid() bool {
	return k == RelationAssigned || k == RelationWatcher
}

// RelationOp is the mutation direction for a task relation.
type RelationOp string

const (
	RelationAdd    RelationOp = "add"
	RelationRemove RelationOp = "remove"
)

// Valid reports whether the op is add or remove.
func (o RelationOp) Valid() bool {
	return o == RelationAdd || o == RelationRemove
}

// ============================================================================
// Service-Layer Input DTOs
// ============================================================================

// TaskCreate carries the input for task creation.
// GroupID is ignored (forced to the parent's group) when ParentID is set.
type TaskCreate struct {
	Description string     // Required, non-empty after trimming
	DueDate     *time.Time // Optional deadline
	OwnerID     int        // Verified caller identity
	GroupID     *int       // Optional owning group
	ParentID    *int       // Optional parent task
}

// TaskUpdate carries a partial update for a task. The *Set flags distinguish
// "not provided" from "provided as null" for the nullable columns.
type TaskUpdate struct {
	Description *string    // New description if non-nil
	DueDate     *time.Time // New due date; nil with DueDateSet clears it
	DueDateSet  bool
	GroupID     *int // New group; nil with GroupIDSet removes the group
	GroupIDSet  bool
	Completed   *bool // New completion flag if non-nil
}

// ============================================================================
// View Models - API Output
// ============================================================================

// TaskWithChildren is the retrieval projection for a single task: the task
// itself plus all direct children ordered by creation time ascending.
type TaskWithChildren struct {
	Task     Task   `json:"task"`
	Children []Task `json:"children"`
}

// CommentView is a comment annotated with its author's display name for
// listing. Ordered by creation time ascending.
type CommentView struct {
	TaskComment
	Author string `db:"author" json:"author"` // Author's username
}

// GroupWithMembers extends Group with member count for display purposes.
// Used in list views to show how many users are in each group.
type GroupWithMembers struct {
	Group
	MemberCount int `db:"member_count" json:"memberCount"` // Count of users in this group
}

// GroupMemberView represents a group member joined with their user record.
// Used when listing a group's membership.
type GroupMemberView struct {
	UserID   int       `db:"user_id" json:"userId"`
	Username string    `db:"username" json:"username"`
	Role     string    `db:"role" json:"role"`
	JoinedAt time.Time `db:"created_at" json:"joinedAt"`
}

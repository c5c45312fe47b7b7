package store

import (
	"context"
	"time"

	"github.com/nhle/taskflow/internal/model"
)

// TaskField names a task attribute that can be grouped on.
type TaskField string

const (
	FieldStatus   TaskField = "status"
	FieldPriority TaskField = "priority"
)

// TaskFilter controls filtering, sorting, and pagination for task queries.
// All set predicates are combined with AND.
type TaskFilter struct {
	Status        *model.Status   // status equals
	ExcludeStatus *model.Status   // status not equal
	Priority      *model.Priority // priority equals
	AssignedTo    *string         // user ID is in the task's assignee set
	DueBefore     *time.Time      // due date strictly before; tasks without one never match
	SortBy        string          // "created_at", "updated_at", "due_date", "title", "status", "priority"
	SortDesc      bool
	Limit         int
	Offset        int
}

// UserFilter controls user listing.
type UserFilter struct {
	Role *model.Role
}

// FieldCount is one bucket of a group-by count.
type FieldCount struct {
	Value string `db:"value" bson:"_id"`
	Count int    `db:"count" bson:"count"`
}

// Store defines the persistence interface for tasks and user credentials.
// Lookups of absent records return an error matching model.ErrNotFound.
type Store interface {
	Ping(ctx context.Context) error
	Close() error

	// === Tasks ===

	// CreateTask inserts a task with its assignees and checklist.
	// Generates a UUID if ID is empty.
	CreateTask(ctx context.Context, task *model.Task) error
	// SaveTask replaces a persisted task, including its assignees and checklist.
	SaveTask(ctx context.Context, task model.Task) error
	DeleteTask(ctx context.Context, id string) error
	GetTaskByID(ctx context.Context, id string) (*model.Task, error)
	GetTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error)
	CountTasks(ctx context.Context, filter TaskFilter) (int, error)
	// CountTasksBy groups tasks matching filter on field. Values with no
	// tasks are absent from the result.
	CountTasksBy(ctx context.Context, field TaskField, filter TaskFilter) ([]FieldCount, error)

	// === Users ===

	// CreateUser inserts a user. Generates a UUID if ID is empty. A
	// duplicate email returns an error matching model.ErrConflict.
	CreateUser(ctx context.Context, user *model.User) error
	SaveUser(ctx context.Context, user model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUsers(ctx context.Context, filter UserFilter) ([]model.User, error)
	// GetUsersByIDs returns the users that exist among ids, in no
	// particular order.
	GetUsersByIDs(ctx context.Context, ids []string) ([]model.User, error)
}

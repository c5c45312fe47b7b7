package model

import (
	"slices"
	"strings"
	"time"
)

// Status is the lifecycle state of a task. The labels are stored and
// serialized verbatim.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool { return slices.Contains(Statuses, s) }

// Key returns the label with whitespace removed ("In Progress" -> "InProgress"),
// used as the chart bucket name.
func (s Status) Key() string { return strings.Join(strings.Fields(string(s)), "") }

// Priority is the urgency label of a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists every priority in ascending order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool { return slices.Contains(Priorities, p) }

// ChecklistItem is a sub-entry of a task. It has no identity of its own;
// its lifecycle is bound to the parent task.
type ChecklistItem struct {
	Text      string `json:"text" db:"text" bson:"text"`
	Completed bool   `json:"completed" db:"completed" bson:"completed"`
}

// Task is a unit of work assigned to one or more users.
type Task struct {
	ID          string     `json:"_id" db:"id" bson:"_id"`
	Title       string     `json:"title" db:"title" bson:"title"`
	Description string     `json:"description" db:"description" bson:"description"`
	Priority    Priority   `json:"priority" db:"priority" bson:"priority"`
	Status      Status     `json:"status" db:"status" bson:"status"`
	DueDate     *time.Time `json:"dueDate" db:"due_date" bson:"dueDate"`

	// AssignedTo holds user IDs. The task does not own the users.
	AssignedTo []string `json:"assignedTo" db:"-" bson:"assignedTo"`

	// CreatedBy is set once at creation and never changed.
	CreatedBy string `json:"createdBy" db:"created_by" bson:"createdBy"`

	Attachments   []string        `json:"attachments" db:"-" bson:"attachments"`
	TodoChecklist []ChecklistItem `json:"todoChecklist" db:"-" bson:"todoChecklist"`

	// Progress is derived from TodoChecklist; see tasks.Progress.
	Progress int `json:"progress" db:"progress" bson:"progress"`

	CreatedAt time.Time `json:"createdAt" db:"created_at" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
}

// IsAssignedTo reports whether userID is among the task's assignees.
func (t Task) IsAssignedTo(userID string) bool {
	return slices.Contains(t.AssignedTo, userID)
}

// CompletedTodoCount returns the number of checked checklist items.
func (t Task) CompletedTodoCount() int {
	n := 0
	for _, item := range t.TodoChecklist {
		if item.Completed {
			n++
		}
	}
	return n
}

// IsOverdue reports whether the task is past its due date at now and not completed.
func (t Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != StatusCompleted
}

// TaskView is a task with its assignees expanded for API responses.
type TaskView struct {
	Task
	AssignedTo []UserSummary `json:"assignedTo"`

	// CompletedTodoCount is only populated by list responses.
	CompletedTodoCount *int `json:"completedTodoCount,omitempty"`
}

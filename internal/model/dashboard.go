package model

import "time"

// Statistics are the top-line counts of a dashboard.
type Statistics struct {
	TotalTasks      int `json:"totalTasks"`
	PendingTasks    int `json:"pendingTasks"`
	InProgressTasks int `json:"inProgressTasks"`
	CompletedTasks  int `json:"completedTasks"`
	OverdueTasks    int `json:"overdueTasks"`
}

// Charts holds zero-filled distributions keyed by label.
type Charts struct {
	// TaskDistribution is keyed by Status.Key plus "All".
	TaskDistribution map[string]int `json:"taskDistribution"`
	// TaskPriorityLevels is keyed by priority label.
	TaskPriorityLevels map[string]int `json:"taskPriorityLevels"`
}

// RecentTask is the reduced form of a task listed on a dashboard.
type RecentTask struct {
	ID        string     `json:"_id"`
	Title     string     `json:"title"`
	Status    Status     `json:"status"`
	Priority  Priority   `json:"priority"`
	DueDate   *time.Time `json:"dueDate"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Dashboard is the statistical view of one scope.
type Dashboard struct {
	Statistics  Statistics   `json:"statistics"`
	Charts      Charts       `json:"charts"`
	RecentTasks []RecentTask `json:"recentTasks"`
}

// StatusSummary accompanies task listings.
type StatusSummary struct {
	All             int `json:"all"`
	PendingTasks    int `json:"pendingTasks"`
	InProgressTasks int `json:"inProgressTasks"`
	CompletedTasks  int `json:"completedTasks"`
}

// TaskStats counts a single user's assigned tasks by status.
type TaskStats struct {
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
}

// UserWithStats is a member listed in the admin user directory.
type UserWithStats struct {
	User
	TaskStats TaskStats `json:"taskStats"`
}

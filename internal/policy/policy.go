// Package policy decides what an actor may do with tasks and reports.
//
// Every handler and service asks Authorize instead of checking roles
// inline, so the rules below are the complete access model.
package policy

import (
	"github.com/nhle/taskflow/internal/model"
)

// Operation is a capability an actor can request.
type Operation string

const (
	ListTasks       Operation = "tasks.list"
	ReadTask        Operation = "tasks.read"
	CreateTask      Operation = "tasks.create"
	UpdateTask      Operation = "tasks.update"
	DeleteTask      Operation = "tasks.delete"
	UpdateStatus    Operation = "tasks.update_status"
	UpdateChecklist Operation = "tasks.update_checklist"
	AdminDashboard  Operation = "dashboard.admin"
	UserDashboard   Operation = "dashboard.user"
	ListUsers       Operation = "users.list"
	ReadUser        Operation = "users.read"
	ResetPassword   Operation = "users.reset_password"
	ExportReports   Operation = "reports.export"
)

type rule int

const (
	anyActor rule = iota
	adminOnly
	adminOrAssignee
)

// rules maps each operation to its access rule.
//
// UpdateTask is open to any authenticated actor while UpdateStatus and
// UpdateChecklist require an assignment. The two disagree; the wider
// rule is kept until product decides otherwise.
var rules = map[Operation]rule{
	ListTasks:       anyActor,
	ReadTask:        anyActor,
	CreateTask:      adminOnly,
	UpdateTask:      anyActor,
	DeleteTask:      adminOnly,
	UpdateStatus:    adminOrAssignee,
	UpdateChecklist: adminOrAssignee,
	AdminDashboard:  adminOnly,
	UserDashboard:   anyActor,
	ListUsers:       adminOnly,
	ReadUser:        anyActor,
	ResetPassword:   adminOnly,
	ExportReports:   adminOnly,
}

// Authorize returns nil when actor may perform op, or an error matching
// model.ErrForbidden. task is only consulted by rules that depend on
// assignment and may be nil otherwise.
func Authorize(op Operation, actor model.Actor, task *model.Task) error {
	r, ok := rules[op]
	if !ok {
		return model.Forbiddenf("Access denied")
	}

	switch r {
	case anyActor:
		return nil
	case adminOnly:
		if actor.IsAdmin() {
			return nil
		}
		return model.Forbiddenf("Access denied, admin only")
	case adminOrAssignee:
		if actor.IsAdmin() {
			return nil
		}
		if task != nil && task.IsAssignedTo(actor.ID) {
			return nil
		}
		return model.Forbiddenf("Not authorized")
	}
	return model.Forbiddenf("Access denied")
}

// Scope returns the assignee a task query must be restricted to for
// actor, or nil when the actor sees every task.
func Scope(actor model.Actor) *string {
	if actor.IsAdmin() {
		return nil
	}
	id := actor.ID
	return &id
}

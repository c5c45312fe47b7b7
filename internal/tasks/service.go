// Package tasks applies task mutations and keeps derived fields
// (progress, status, checklist completion) consistent with them.
package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nhle/taskflow/internal/clock"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/policy"
	"github.com/nhle/taskflow/internal/store"
)

// Service validates, authorizes, and persists task operations.
type Service struct {
	store store.Store
	clock clock.Clock
	log   zerolog.Logger
}

// NewService returns a Service backed by s.
func NewService(s store.Store, c clock.Clock, log zerolog.Logger) *Service {
	return &Service{
		store: s,
		clock: c,
		log:   log.With().Str("component", "tasks").Logger(),
	}
}

func (s *Service) authorize(op policy.Operation, actor model.Actor, task *model.Task) error {
	err := policy.Authorize(op, actor, task)
	if err != nil {
		ev := s.log.Debug().Str("op", string(op)).Str("actor", actor.ID)
		if task != nil {
			ev = ev.Str("task", task.ID)
		}
		ev.Msg("access denied")
	}
	return err
}

// List returns the tasks visible to actor, newest first, optionally
// restricted to one status. Each task carries its expanded assignees
// and completed checklist count.
func (s *Service) List(ctx context.Context, actor model.Actor, status string) ([]model.TaskView, error) {
	if err := s.authorize(policy.ListTasks, actor, nil); err != nil {
		return nil, err
	}

	filter := store.TaskFilter{
		AssignedTo: policy.Scope(actor),
		SortBy:     "created_at",
		SortDesc:   true,
	}
	if status != "" {
		st := model.Status(status)
		if err := validateStatus(st); err != nil {
			return nil, err
		}
		filter.Status = &st
	}

	tasks, err := s.store.GetTasks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	views, err := s.expand(ctx, tasks)
	if err != nil {
		return nil, err
	}
	for i := range views {
		n := views[i].Task.CompletedTodoCount()
		views[i].CompletedTodoCount = &n
	}
	return views, nil
}

// Get returns a single task with its assignees expanded.
func (s *Service) Get(ctx context.Context, actor model.Actor, id string) (*model.TaskView, error) {
	task, err := s.store.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(policy.ReadTask, actor, task); err != nil {
		return nil, err
	}

	return s.view(ctx, task)
}

// view expands a single task.
func (s *Service) view(ctx context.Context, task *model.Task) (*model.TaskView, error) {
	views, err := s.expand(ctx, []model.Task{*task})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Create validates in and stores a new task created by actor.
func (s *Service) Create(ctx context.Context, actor model.Actor, in CreateInput) (*model.Task, error) {
	if err := s.authorize(policy.CreateTask, actor, nil); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, model.Validationf("Title is required")
	}
	assignees, err := parseAssignees(in.AssignedTo)
	if err != nil {
		return nil, err
	}
	if err := s.checkUsersExist(ctx, assignees); err != nil {
		return nil, err
	}

	task := model.Task{
		Title:         title,
		Description:   in.Description,
		Priority:      model.PriorityMedium,
		Status:        model.StatusPending,
		AssignedTo:    assignees,
		CreatedBy:     actor.ID,
		Attachments:   in.Attachments,
		TodoChecklist: in.TodoChecklist,
	}
	if in.Priority != "" {
		if err := validatePriority(in.Priority); err != nil {
			return nil, err
		}
		task.Priority = in.Priority
	}
	if in.Status != "" {
		if err := validateStatus(in.Status); err != nil {
			return nil, err
		}
		task.Status = in.Status
	}
	if in.DueDate != nil && strings.TrimSpace(*in.DueDate) != "" {
		due, err := ParseDueDate(*in.DueDate)
		if err != nil {
			return nil, err
		}
		task.DueDate = &due
	}
	if task.Attachments == nil {
		task.Attachments = []string{}
	}
	if task.TodoChecklist == nil {
		task.TodoChecklist = []model.ChecklistItem{}
	}
	if err := validateChecklist(task.TodoChecklist); err != nil {
		return nil, err
	}
	task.Progress = Progress(task.TodoChecklist)

	now := s.clock.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	if err := s.store.CreateTask(ctx, &task); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	s.log.Info().Str("task", task.ID).Str("actor", actor.ID).Msg("task created")
	return &task, nil
}

// Update applies the supplied fields of in to the task with the given ID.
// A supplied checklist recomputes progress but leaves status as is;
// status only changes through UpdateStatus and UpdateChecklist.
func (s *Service) Update(ctx context.Context, actor model.Actor, id string, in UpdateInput) (*model.TaskView, error) {
	task, err := s.store.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(policy.UpdateTask, actor, task); err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, model.Validationf("Title is required")
		}
		task.Title = title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Priority != nil {
		if err := validatePriority(*in.Priority); err != nil {
			return nil, err
		}
		task.Priority = *in.Priority
	}
	if in.DueDate != nil {
		due, err := ParseDueDate(*in.DueDate)
		if err != nil {
			return nil, err
		}
		task.DueDate = &due
	}
	if !absent(in.AssignedTo) {
		assignees, err := parseAssignees(in.AssignedTo)
		if err != nil {
			return nil, err
		}
		if err := s.checkUsersExist(ctx, assignees); err != nil {
			return nil, err
		}
		task.AssignedTo = assignees
	}
	if in.Attachments != nil {
		task.Attachments = append([]string{}, (*in.Attachments)...)
	}
	if in.TodoChecklist != nil {
		if err := validateChecklist(*in.TodoChecklist); err != nil {
			return nil, err
		}
		task.TodoChecklist = append([]model.ChecklistItem{}, (*in.TodoChecklist)...)
		task.Progress = Progress(task.TodoChecklist)
	}

	if _, err := s.save(ctx, actor, task, "task updated"); err != nil {
		return nil, err
	}
	return s.view(ctx, task)
}

// UpdateStatus sets the status of a task directly. Only admins and
// assignees may do so.
func (s *Service) UpdateStatus(ctx context.Context, actor model.Actor, id string, in StatusInput) (*model.Task, error) {
	task, err := s.store.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(policy.UpdateStatus, actor, task); err != nil {
		return nil, err
	}

	if in.Status != nil {
		if err := validateStatus(*in.Status); err != nil {
			return nil, err
		}
		ApplyStatus(task, *in.Status)
	}
	return s.save(ctx, actor, task, "task status updated")
}

// UpdateChecklist replaces the checklist of a task and derives progress
// and status from it. Only admins and assignees may do so.
func (s *Service) UpdateChecklist(ctx context.Context, actor model.Actor, id string, in ChecklistInput) (*model.TaskView, error) {
	task, err := s.store.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(policy.UpdateChecklist, actor, task); err != nil {
		return nil, err
	}

	if in.TodoChecklist == nil {
		return nil, model.Validationf("todoChecklist must be an array")
	}
	if err := validateChecklist(*in.TodoChecklist); err != nil {
		return nil, err
	}
	ApplyChecklist(task, *in.TodoChecklist)
	if _, err := s.save(ctx, actor, task, "task checklist updated"); err != nil {
		return nil, err
	}
	return s.view(ctx, task)
}

// Delete removes a task and its checklist.
func (s *Service) Delete(ctx context.Context, actor model.Actor, id string) error {
	if err := s.authorize(policy.DeleteTask, actor, nil); err != nil {
		return err
	}
	if err := s.store.DeleteTask(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("task", id).Str("actor", actor.ID).Msg("task deleted")
	return nil
}

func (s *Service) save(ctx context.Context, actor model.Actor, task *model.Task, msg string) (*model.Task, error) {
	task.UpdatedAt = s.clock.Now().UTC()
	if err := s.store.SaveTask(ctx, *task); err != nil {
		return nil, err
	}
	s.log.Info().Str("task", task.ID).Str("actor", actor.ID).Msg(msg)
	return task, nil
}

// checkUsersExist fails with a validation error when any ID is not a user.
func (s *Service) checkUsersExist(ctx context.Context, ids []string) error {
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("loading assignees: %w", err)
	}
	if len(users) == len(ids) {
		return nil
	}

	known := make(map[string]bool, len(users))
	for _, u := range users {
		known[u.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return model.Validationf("Unknown user %q in assignedTo", id)
		}
	}
	return nil
}

// expand replaces assignee IDs with user summaries. Users that no longer
// exist are left out.
func (s *Service) expand(ctx context.Context, tasks []model.Task) ([]model.TaskView, error) {
	var ids []string
	seen := map[string]bool{}
	for _, task := range tasks {
		for _, id := range task.AssignedTo {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading assignees: %w", err)
	}
	byID := make(map[string]model.UserSummary, len(users))
	for _, u := range users {
		byID[u.ID] = u.Summary()
	}

	views := make([]model.TaskView, len(tasks))
	for i, task := range tasks {
		assignees := make([]model.UserSummary, 0, len(task.AssignedTo))
		for _, id := range task.AssignedTo {
			if u, ok := byID[id]; ok {
				assignees = append(assignees, u)
			}
		}
		views[i] = model.TaskView{Task: task, AssignedTo: assignees}
	}
	return views, nil
}

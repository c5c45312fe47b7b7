// Package report computes read-only statistics over tasks: dashboards,
// status summaries, per-user counts, and CSV exports.
//
// Aggregations run their store queries one after another and fail as a
// whole when any of them fails.
package report

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nhle/taskflow/internal/clock"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/policy"
	"github.com/nhle/taskflow/internal/store"
)

// RecentLimit is the number of tasks listed under recentTasks.
const RecentLimit = 10

// Service computes statistics from the task store.
type Service struct {
	store store.Store
	clock clock.Clock
	log   zerolog.Logger
}

// NewService returns a Service reading from s. Overdue detection uses c.
func NewService(s store.Store, c clock.Clock, log zerolog.Logger) *Service {
	return &Service{
		store: s,
		clock: c,
		log:   log.With().Str("component", "report").Logger(),
	}
}

func (s *Service) authorize(op policy.Operation, actor model.Actor) error {
	err := policy.Authorize(op, actor, nil)
	if err != nil {
		s.log.Debug().Str("op", string(op)).Str("actor", actor.ID).Msg("access denied")
	}
	return err
}

// AdminDashboard returns the dashboard over every task.
func (s *Service) AdminDashboard(ctx context.Context, actor model.Actor) (*model.Dashboard, error) {
	if err := s.authorize(policy.AdminDashboard, actor); err != nil {
		return nil, err
	}
	return s.Dashboard(ctx, nil)
}

// UserDashboard returns the dashboard over the tasks assigned to actor,
// whatever the actor's role.
func (s *Service) UserDashboard(ctx context.Context, actor model.Actor) (*model.Dashboard, error) {
	if err := s.authorize(policy.UserDashboard, actor); err != nil {
		return nil, err
	}
	id := actor.ID
	return s.Dashboard(ctx, &id)
}

// Dashboard computes statistics, charts, and recent tasks over the tasks
// assigned to scope, or over all tasks when scope is nil.
func (s *Service) Dashboard(ctx context.Context, scope *string) (*model.Dashboard, error) {
	base := store.TaskFilter{AssignedTo: scope}

	total, err := s.store.CountTasks(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("counting tasks: %w", err)
	}
	byStatus, err := s.countBy(ctx, store.FieldStatus, base)
	if err != nil {
		return nil, err
	}

	completed := model.StatusCompleted
	now := s.clock.Now()
	overdue, err := s.store.CountTasks(ctx, store.TaskFilter{
		AssignedTo:    scope,
		ExcludeStatus: &completed,
		DueBefore:     &now,
	})
	if err != nil {
		return nil, fmt.Errorf("counting overdue tasks: %w", err)
	}

	byPriority, err := s.countBy(ctx, store.FieldPriority, base)
	if err != nil {
		return nil, err
	}

	recent, err := s.store.GetTasks(ctx, store.TaskFilter{
		AssignedTo: scope,
		SortBy:     "created_at",
		SortDesc:   true,
		Limit:      RecentLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("loading recent tasks: %w", err)
	}

	distribution := map[string]int{"All": total}
	for _, st := range model.Statuses {
		distribution[st.Key()] = byStatus[string(st)]
	}
	levels := make(map[string]int, len(model.Priorities))
	for _, p := range model.Priorities {
		levels[string(p)] = byPriority[string(p)]
	}

	recentTasks := make([]model.RecentTask, len(recent))
	for i, t := range recent {
		recentTasks[i] = model.RecentTask{
			ID:        t.ID,
			Title:     t.Title,
			Status:    t.Status,
			Priority:  t.Priority,
			DueDate:   t.DueDate,
			CreatedAt: t.CreatedAt,
		}
	}

	return &model.Dashboard{
		Statistics: model.Statistics{
			TotalTasks:      total,
			PendingTasks:    byStatus[string(model.StatusPending)],
			InProgressTasks: byStatus[string(model.StatusInProgress)],
			CompletedTasks:  byStatus[string(model.StatusCompleted)],
			OverdueTasks:    overdue,
		},
		Charts: model.Charts{
			TaskDistribution:   distribution,
			TaskPriorityLevels: levels,
		},
		RecentTasks: recentTasks,
	}, nil
}

// StatusSummary returns the top-line status counts over the tasks actor
// can list.
func (s *Service) StatusSummary(ctx context.Context, actor model.Actor) (*model.StatusSummary, error) {
	if err := s.authorize(policy.ListTasks, actor); err != nil {
		return nil, err
	}

	base := store.TaskFilter{AssignedTo: policy.Scope(actor)}
	total, err := s.store.CountTasks(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("counting tasks: %w", err)
	}
	byStatus, err := s.countBy(ctx, store.FieldStatus, base)
	if err != nil {
		return nil, err
	}

	return &model.StatusSummary{
		All:             total,
		PendingTasks:    byStatus[string(model.StatusPending)],
		InProgressTasks: byStatus[string(model.StatusInProgress)],
		CompletedTasks:  byStatus[string(model.StatusCompleted)],
	}, nil
}

// Members lists every member account with counts of the tasks assigned
// to it.
func (s *Service) Members(ctx context.Context, actor model.Actor) ([]model.UserWithStats, error) {
	if err := s.authorize(policy.ListUsers, actor); err != nil {
		return nil, err
	}

	role := model.RoleMember
	users, err := s.store.GetUsers(ctx, store.UserFilter{Role: &role})
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	return s.withStats(ctx, users)
}

func (s *Service) withStats(ctx context.Context, users []model.User) ([]model.UserWithStats, error) {
	out := make([]model.UserWithStats, len(users))
	for i, u := range users {
		id := u.ID
		byStatus, err := s.countBy(ctx, store.FieldStatus, store.TaskFilter{AssignedTo: &id})
		if err != nil {
			return nil, err
		}
		out[i] = model.UserWithStats{
			User: u,
			TaskStats: model.TaskStats{
				Pending:    byStatus[string(model.StatusPending)],
				InProgress: byStatus[string(model.StatusInProgress)],
				Completed:  byStatus[string(model.StatusCompleted)],
			},
		}
	}
	return out, nil
}

// countBy returns group counts as a map; absent values read as zero.
func (s *Service) countBy(ctx context.Context, field store.TaskField, filter store.TaskFilter) (map[string]int, error) {
	counts, err := s.store.CountTasksBy(ctx, field, filter)
	if err != nil {
		return nil, fmt.Errorf("counting tasks by %s: %w", field, err)
	}
	out := make(map[string]int, len(counts))
	for _, c := range counts {
		out[c.Value] = c.Count
	}
	return out, nil
}

package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/policy"
	"github.com/nhle/taskflow/internal/store"
)

var (
	taskExportHeader = []string{
		"Task ID", "Title", "Description", "Priority", "Status", "Due Date", "Assigned To",
	}
	userExportHeader = []string{
		"User Name", "Email", "Total Assigned Tasks",
		"Pending Tasks", "In Progress Tasks", "Completed Tasks",
	}
)

// ExportTasks writes every task as CSV to w. Assignees are listed by name.
func (s *Service) ExportTasks(ctx context.Context, actor model.Actor, w io.Writer) error {
	if err := s.authorize(policy.ExportReports, actor); err != nil {
		return err
	}

	tasks, err := s.store.GetTasks(ctx, store.TaskFilter{SortBy: "created_at"})
	if err != nil {
		return fmt.Errorf("loading tasks: %w", err)
	}
	users, err := s.store.GetUsers(ctx, store.UserFilter{})
	if err != nil {
		return fmt.Errorf("loading users: %w", err)
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(taskExportHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, t := range tasks {
		assigned := make([]string, 0, len(t.AssignedTo))
		for _, id := range t.AssignedTo {
			if name, ok := names[id]; ok {
				assigned = append(assigned, name)
			}
		}
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.UTC().Format(time.DateOnly)
		}
		record := []string{
			t.ID, cell(t.Title), cell(t.Description), string(t.Priority), string(t.Status),
			due, cell(strings.Join(assigned, ", ")),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing task %s: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportUsers writes every user with their assignment counts as CSV to w.
func (s *Service) ExportUsers(ctx context.Context, actor model.Actor, w io.Writer) error {
	if err := s.authorize(policy.ExportReports, actor); err != nil {
		return err
	}

	users, err := s.store.GetUsers(ctx, store.UserFilter{})
	if err != nil {
		return fmt.Errorf("loading users: %w", err)
	}
	stats, err := s.withStats(ctx, users)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(userExportHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, u := range stats {
		ts := u.TaskStats
		record := []string{
			cell(u.Name), cell(u.Email),
			strconv.Itoa(ts.Pending + ts.InProgress + ts.Completed),
			strconv.Itoa(ts.Pending),
			strconv.Itoa(ts.InProgress),
			strconv.Itoa(ts.Completed),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing user %s: %w", u.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// cell quotes user-entered text that a spreadsheet would otherwise
// evaluate as a formula.
func cell(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

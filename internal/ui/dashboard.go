package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/theme"
)

// RenderDashboard renders d as a header, statistics and chart panels,
// and the recent task list.
func (l Layout) RenderDashboard(title string, d model.Dashboard, now time.Time) string {
	header := l.RenderHeader(title, now.Format("2006-01-02 15:04"))

	panels := l.RenderPanels(
		theme.PanelStyle.Render(renderStatistics(d.Statistics)),
		theme.PanelStyle.Render(renderDistribution(d.Charts)),
		theme.PanelStyle.Render(renderPriorities(d.Charts)),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		panels,
		theme.PanelStyle.Render(renderRecent(d.RecentTasks, now)),
	)
}

func renderStatistics(s model.Statistics) string {
	overdue := fmt.Sprintf("%d", s.OverdueTasks)
	if s.OverdueTasks > 0 {
		overdue = theme.OverdueStyle.Render(overdue)
	}
	rows := [][2]string{
		{"Total", fmt.Sprintf("%d", s.TotalTasks)},
		{"Pending", fmt.Sprintf("%d", s.PendingTasks)},
		{"In Progress", fmt.Sprintf("%d", s.InProgressTasks)},
		{"Completed", fmt.Sprintf("%d", s.CompletedTasks)},
		{"Overdue", overdue},
	}
	return renderRows("Statistics", rows)
}

func renderDistribution(c model.Charts) string {
	rows := [][2]string{{"All", fmt.Sprintf("%d", c.TaskDistribution["All"])}}
	for _, st := range model.Statuses {
		rows = append(rows, [2]string{
			theme.StatusStyle(st).Render(string(st)),
			fmt.Sprintf("%d", c.TaskDistribution[st.Key()]),
		})
	}
	return renderRows("Status", rows)
}

func renderPriorities(c model.Charts) string {
	var rows [][2]string
	for _, p := range model.Priorities {
		rows = append(rows, [2]string{
			theme.PriorityStyle(p).Render(string(p)),
			fmt.Sprintf("%d", c.TaskPriorityLevels[string(p)]),
		})
	}
	return renderRows("Priority", rows)
}

func renderRows(title string, rows [][2]string) string {
	labelWidth := 0
	for _, r := range rows {
		labelWidth = max(labelWidth, lipgloss.Width(r[0]))
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(labelWidth + 2).Render(r[0]))
		b.WriteString(r[1])
	}
	return b.String()
}

func renderRecent(tasks []model.RecentTask, now time.Time) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Recent tasks"))
	if len(tasks) == 0 {
		b.WriteString("\n")
		b.WriteString(theme.HelpStyle.Render("no tasks yet"))
		return b.String()
	}

	for _, t := range tasks {
		due := theme.LabelStyle.Render("no due date")
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
			if t.DueDate.Before(now) && t.Status != model.StatusCompleted {
				due = theme.OverdueStyle.Render(due)
			}
		}
		fmt.Fprintf(&b, "\n%s  %s  %s  %s",
			theme.StatusStyle(t.Status).Width(12).Render(string(t.Status)),
			theme.PriorityStyle(t.Priority).Width(7).Render(string(t.Priority)),
			due,
			t.Title,
		)
	}
	return b.String()
}

// Package ui renders dashboards for the terminal.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskflow/internal/theme"
)

// Layout holds the width output is fitted to.
type Layout struct {
	Width int
}

// NewLayout creates a Layout for a terminal of the given width. A
// non-positive width falls back to 80 columns.
func NewLayout(width int) Layout {
	if width <= 0 {
		width = 80
	}
	return Layout{Width: width}
}

// RenderHeader renders a full-width title bar with title on the left and
// note on the right.
func (l Layout) RenderHeader(title string, note string) string {
	titleRendered := theme.HeaderStyle.Render(title)

	noteRendered := theme.HeaderStyle.
		Align(lipgloss.Right).
		Render(note)

	gap := l.Width -
		lipgloss.Width(titleRendered) -
		lipgloss.Width(noteRendered)
	if gap < 0 {
		gap = 0
	}

	filler := theme.HeaderStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.HeaderStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		titleRendered,
		filler,
		noteRendered,
	)
}

// RenderPanels lays panels side by side when they fit the width and
// stacks them otherwise.
func (l Layout) RenderPanels(panels ...string) string {
	row := lipgloss.JoinHorizontal(lipgloss.Top, panels...)
	if lipgloss.Width(row) <= l.Width {
		return row
	}
	return lipgloss.JoinVertical(lipgloss.Left, panels...)
}

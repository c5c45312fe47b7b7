package tasks_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/tasks"
)

func checklist(done ...bool) []model.ChecklistItem {
	items := make([]model.ChecklistItem, len(done))
	for i, d := range done {
		items[i] = model.ChecklistItem{Text: string(rune('a' + i)), Completed: d}
	}
	return items
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name  string
		items []model.ChecklistItem
		want  int
	}{
		{"empty", nil, 0},
		{"none done", checklist(false, false), 0},
		{"one of three", checklist(true, false, false), 33},
		{"two of three", checklist(true, true, false), 67},
		{"half", checklist(true, false), 50},
		{"one of eight rounds up", checklist(true, false, false, false, false, false, false, false), 13},
		{"all done", checklist(true, true), 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tasks.Progress(tt.items))
		})
	}
}

func TestProgressMatchesRoundedRatio(t *testing.T) {
	for n := 1; n <= 12; n++ {
		for k := 0; k <= n; k++ {
			done := make([]bool, n)
			for i := 0; i < k; i++ {
				done[i] = true
			}
			want := int(math.Round(100 * float64(k) / float64(n)))
			assert.Equal(t, want, tasks.Progress(checklist(done...)), "k=%d n=%d", k, n)
		}
	}
}

func TestApplyChecklist(t *testing.T) {
	task := model.Task{Status: model.StatusCompleted, Progress: 100}

	tasks.ApplyChecklist(&task, checklist(true, false, false))
	assert.Equal(t, 33, task.Progress)
	assert.Equal(t, model.StatusInProgress, task.Status)

	tasks.ApplyChecklist(&task, checklist(true, true))
	assert.Equal(t, 100, task.Progress)
	assert.Equal(t, model.StatusCompleted, task.Status)

	tasks.ApplyChecklist(&task, nil)
	assert.Equal(t, 0, task.Progress)
	assert.Equal(t, model.StatusPending, task.Status)
	assert.NotNil(t, task.TodoChecklist)
}

func TestApplyStatusCompletedForcesChecklist(t *testing.T) {
	task := model.Task{TodoChecklist: checklist(false, true, false), Progress: 33}

	tasks.ApplyStatus(&task, model.StatusCompleted)
	assert.Equal(t, model.StatusCompleted, task.Status)
	assert.Equal(t, 100, task.Progress)
	for _, item := range task.TodoChecklist {
		assert.True(t, item.Completed)
	}

	empty := model.Task{}
	tasks.ApplyStatus(&empty, model.StatusCompleted)
	assert.Equal(t, 100, empty.Progress)
}

func TestApplyStatusOtherLeavesChecklist(t *testing.T) {
	task := model.Task{TodoChecklist: checklist(true, false), Progress: 50}

	tasks.ApplyStatus(&task, model.StatusPending)
	assert.Equal(t, model.StatusPending, task.Status)
	assert.Equal(t, 50, task.Progress)
	assert.False(t, task.TodoChecklist[1].Completed)
}

func TestParseDueDate(t *testing.T) {
	got, err := tasks.ParseDueDate("2025-04-01")
	assert.NoError(t, err)
	assert.Equal(t, "2025-04-01T00:00:00Z", got.Format("2006-01-02T15:04:05Z07:00"))

	got, err = tasks.ParseDueDate("2025-04-01T10:30:00+02:00")
	assert.NoError(t, err)
	assert.Equal(t, 8, got.Hour())

	_, err = tasks.ParseDueDate("next tuesday")
	assert.ErrorIs(t, err, model.ErrValidation)
}

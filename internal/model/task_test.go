package model_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskflow/internal/model"
)

func TestStatusKey(t *testing.T) {
	assert.Equal(t, "Pending", model.StatusPending.Key())
	assert.Equal(t, "InProgress", model.StatusInProgress.Key())
	assert.Equal(t, "Completed", model.StatusCompleted.Key())
}

func TestStatusAndPriorityValid(t *testing.T) {
	assert.True(t, model.StatusInProgress.Valid())
	assert.False(t, model.Status("in_progress").Valid())
	assert.True(t, model.PriorityHigh.Valid())
	assert.False(t, model.Priority("Urgent").Valid())
}

func TestTaskIsOverdue(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, model.Task{Status: model.StatusPending, DueDate: &past}.IsOverdue(now))
	assert.False(t, model.Task{Status: model.StatusCompleted, DueDate: &past}.IsOverdue(now))
	assert.False(t, model.Task{Status: model.StatusInProgress, DueDate: &future}.IsOverdue(now))
	assert.False(t, model.Task{Status: model.StatusPending}.IsOverdue(now))
}

func TestTaskCompletedTodoCount(t *testing.T) {
	task := model.Task{TodoChecklist: []model.ChecklistItem{
		{Text: "a", Completed: true},
		{Text: "b"},
		{Text: "c", Completed: true},
	}}
	assert.Equal(t, 2, task.CompletedTodoCount())
	assert.True(t, model.Task{AssignedTo: []string{"u1", "u2"}}.IsAssignedTo("u2"))
}

func TestUserPasswordNeverSerialized(t *testing.T) {
	data, err := json.Marshal(model.User{ID: "u1", Email: "a@b.c", Password: "$2a$10$hash"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hash")
	assert.NotContains(t, string(data), "password")
}

func TestTaskViewShadowsAssignees(t *testing.T) {
	view := model.TaskView{
		Task:       model.Task{ID: "t1", AssignedTo: []string{"u1"}},
		AssignedTo: []model.UserSummary{{ID: "u1", Name: "Ann"}},
	}
	data, err := json.Marshal(view)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assignees := decoded["assignedTo"].([]any)
	require.Len(t, assignees, 1)
	assert.Equal(t, "Ann", assignees[0].(map[string]any)["name"])
	assert.NotContains(t, decoded, "completedTodoCount")
}

func TestErrorKinds(t *testing.T) {
	err := model.Validationf("Title is required")
	assert.True(t, errors.Is(err, model.ErrValidation))
	assert.False(t, errors.Is(err, model.ErrNotFound))
	assert.Equal(t, "Title is required", err.Error())

	var modelErr *model.Error
	require.True(t, errors.As(wrap(err), &modelErr))
	assert.Equal(t, "Title is required", modelErr.Message)
}

func wrap(err error) error { return errors.Join(errors.New("context"), err) }

package tasks

import "github.com/nhle/taskflow/internal/model"

// Progress returns the share of completed items as a whole percentage,
// rounding halves up. An empty checklist has no progress.
func Progress(items []model.ChecklistItem) int {
	n := len(items)
	if n == 0 {
		return 0
	}
	k := 0
	for _, item := range items {
		if item.Completed {
			k++
		}
	}
	// round(100k/n) in integers: floor((200k + n) / 2n).
	return (200*k + n) / (2 * n)
}

// StatusForProgress derives the status a checklist of the given progress implies.
func StatusForProgress(progress int) model.Status {
	switch {
	case progress >= 100:
		return model.StatusCompleted
	case progress > 0:
		return model.StatusInProgress
	default:
		return model.StatusPending
	}
}

// ApplyChecklist replaces the checklist of task and recomputes progress
// and status from it. Any previously set status is overwritten.
func ApplyChecklist(task *model.Task, items []model.ChecklistItem) {
	checklist := make([]model.ChecklistItem, len(items))
	copy(checklist, items)

	task.TodoChecklist = checklist
	task.Progress = Progress(checklist)
	task.Status = StatusForProgress(task.Progress)
}

// ApplyStatus sets the status of task directly. Completing a task marks
// every checklist item done and pins progress to 100 whatever the
// checklist held before.
func ApplyStatus(task *model.Task, status model.Status) {
	task.Status = status
	if status != model.StatusCompleted {
		return
	}
	for i := range task.TodoChecklist {
		task.TodoChecklist[i].Completed = true
	}
	task.Progress = 100
}

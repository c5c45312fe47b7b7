package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/taskflow/internal/model"
)

const taskColumns = `tasks.id, tasks.title, tasks.description, tasks.priority, tasks.status,
	tasks.due_date, tasks.created_by, tasks.attachments, tasks.progress,
	tasks.created_at, tasks.updated_at`

// taskRow is a tasks row; attachments are stored as a JSON array.
type taskRow struct {
	model.Task
	Attachments string `db:"attachments"`
}

type assigneeRow struct {
	TaskID string `db:"task_id"`
	UserID string `db:"user_id"`
}

type checklistRow struct {
	TaskID string `db:"task_id"`
	model.ChecklistItem
}

// CreateTask inserts a new task. Generates a UUID if ID is empty.
func (s *SQLStore) CreateTask(ctx context.Context, task *model.Task) error {
	if strings.TrimSpace(task.Title) == "" {
		return fmt.Errorf("task title must not be empty")
	}
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	attachments, err := marshalAttachments(task.Attachments)
	if err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO tasks (
				id, title, description, priority, status,
				due_date, created_by, attachments, progress,
				created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			task.ID, task.Title, task.Description, string(task.Priority), string(task.Status),
			utcPtr(task.DueDate), task.CreatedBy, attachments, task.Progress,
			task.CreatedAt.UTC(), task.UpdatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("creating task: %w", err)
		}
		return writeTaskChildren(ctx, tx, *task)
	})
}

// SaveTask updates an existing task by ID and replaces its assignees and
// checklist. CreatedBy and CreatedAt are never rewritten.
func (s *SQLStore) SaveTask(ctx context.Context, task model.Task) error {
	if strings.TrimSpace(task.Title) == "" {
		return fmt.Errorf("task title must not be empty")
	}
	attachments, err := marshalAttachments(task.Attachments)
	if err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, tx.Rebind(`
			UPDATE tasks SET
				title = ?, description = ?, priority = ?, status = ?,
				due_date = ?, attachments = ?, progress = ?, updated_at = ?
			WHERE id = ?`),
			task.Title, task.Description, string(task.Priority), string(task.Status),
			utcPtr(task.DueDate), attachments, task.Progress, task.UpdatedAt.UTC(),
			task.ID,
		)
		if err != nil {
			return fmt.Errorf("updating task %s: %w", task.ID, err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return model.NotFoundf("Task not found")
		}
		return writeTaskChildren(ctx, tx, task)
	})
}

// DeleteTask removes a task together with its assignees and checklist.
func (s *SQLStore) DeleteTask(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := deleteTaskChildren(ctx, tx, id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM tasks WHERE id = ?"), id)
		if err != nil {
			return fmt.Errorf("deleting task %s: %w", id, err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return model.NotFoundf("Task not found")
		}
		return nil
	})
}

// GetTaskByID retrieves a single task by ID, including assignees and checklist.
func (s *SQLStore) GetTaskByID(ctx context.Context, id string) (*model.Task, error) {
	var row taskRow
	err := s.db.GetContext(ctx, &row,
		s.db.Rebind("SELECT "+taskColumns+" FROM tasks WHERE tasks.id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NotFoundf("Task not found")
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}

	tasks, err := s.hydrateTasks(ctx, []taskRow{row})
	if err != nil {
		return nil, err
	}
	return &tasks[0], nil
}

// GetTasks retrieves tasks matching the filter.
func (s *SQLStore) GetTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	where, args := buildTaskWhere(filter)
	query := "SELECT " + taskColumns + " FROM tasks" + where + buildTaskOrder(filter)

	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	return s.hydrateTasks(ctx, rows)
}

// CountTasks returns the number of tasks matching the filter.
func (s *SQLStore) CountTasks(ctx context.Context, filter TaskFilter) (int, error) {
	where, args := buildTaskWhere(filter)

	var count int
	err := s.db.GetContext(ctx, &count, s.db.Rebind("SELECT COUNT(*) FROM tasks"+where), args...)
	if err != nil {
		return 0, fmt.Errorf("counting tasks: %w", err)
	}
	return count, nil
}

// CountTasksBy returns per-value task counts for field among tasks matching the filter.
func (s *SQLStore) CountTasksBy(
	ctx context.Context,
	field TaskField,
	filter TaskFilter,
) ([]FieldCount, error) {
	column, ok := groupColumns[field]
	if !ok {
		return nil, fmt.Errorf("cannot group tasks by %q", field)
	}
	where, args := buildTaskWhere(filter)
	query := fmt.Sprintf("SELECT %s AS value, COUNT(*) AS count FROM tasks%s GROUP BY %s",
		column, where, column)

	var counts []FieldCount
	if err := s.db.SelectContext(ctx, &counts, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("grouping tasks by %s: %w", field, err)
	}
	return counts, nil
}

var groupColumns = map[TaskField]string{
	FieldStatus:   "tasks.status",
	FieldPriority: "tasks.priority",
}

// hydrateTasks decodes rows and batch loads assignees and checklist items.
func (s *SQLStore) hydrateTasks(ctx context.Context, rows []taskRow) ([]model.Task, error) {
	if len(rows) == 0 {
		return []model.Task{}, nil
	}

	tasks := make([]model.Task, len(rows))
	index := make(map[string]int, len(rows))
	ids := make([]string, len(rows))
	for i, row := range rows {
		task := row.Task
		task.Attachments = []string{}
		if row.Attachments != "" {
			if err := json.Unmarshal([]byte(row.Attachments), &task.Attachments); err != nil {
				return nil, fmt.Errorf("unmarshaling attachments for task %s: %w", task.ID, err)
			}
		}
		task.AssignedTo = []string{}
		task.TodoChecklist = []model.ChecklistItem{}
		tasks[i] = task
		index[task.ID] = i
		ids[i] = task.ID
	}

	query, args, err := sqlx.In(
		"SELECT task_id, user_id FROM task_assignees WHERE task_id IN (?) ORDER BY task_id, position", ids)
	if err != nil {
		return nil, fmt.Errorf("building assignee query: %w", err)
	}
	var assignees []assigneeRow
	if err := s.db.SelectContext(ctx, &assignees, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("loading task assignees: %w", err)
	}
	for _, a := range assignees {
		i := index[a.TaskID]
		tasks[i].AssignedTo = append(tasks[i].AssignedTo, a.UserID)
	}

	query, args, err = sqlx.In(
		"SELECT task_id, text, completed FROM checklist_items WHERE task_id IN (?) ORDER BY task_id, position", ids)
	if err != nil {
		return nil, fmt.Errorf("building checklist query: %w", err)
	}
	var items []checklistRow
	if err := s.db.SelectContext(ctx, &items, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("loading checklist items: %w", err)
	}
	for _, item := range items {
		i := index[item.TaskID]
		tasks[i].TodoChecklist = append(tasks[i].TodoChecklist, item.ChecklistItem)
	}

	return tasks, nil
}

// writeTaskChildren replaces the assignee and checklist rows of task.
func writeTaskChildren(ctx context.Context, tx *sqlx.Tx, task model.Task) error {
	if err := deleteTaskChildren(ctx, tx, task.ID); err != nil {
		return err
	}

	insertAssignee := tx.Rebind(
		"INSERT INTO task_assignees (task_id, user_id, position) VALUES (?, ?, ?)")
	for i, userID := range task.AssignedTo {
		if _, err := tx.ExecContext(ctx, insertAssignee, task.ID, userID, i); err != nil {
			return fmt.Errorf("assigning user %s to task %s: %w", userID, task.ID, err)
		}
	}

	insertItem := tx.Rebind(
		"INSERT INTO checklist_items (task_id, position, text, completed) VALUES (?, ?, ?, ?)")
	for i, item := range task.TodoChecklist {
		if _, err := tx.ExecContext(ctx, insertItem, task.ID, i, item.Text, item.Completed); err != nil {
			return fmt.Errorf("adding checklist item to task %s: %w", task.ID, err)
		}
	}
	return nil
}

func deleteTaskChildren(ctx context.Context, tx *sqlx.Tx, taskID string) error {
	if _, err := tx.ExecContext(ctx,
		tx.Rebind("DELETE FROM task_assignees WHERE task_id = ?"), taskID); err != nil {
		return fmt.Errorf("clearing assignees of task %s: %w", taskID, err)
	}
	if _, err := tx.ExecContext(ctx,
		tx.Rebind("DELETE FROM checklist_items WHERE task_id = ?"), taskID); err != nil {
		return fmt.Errorf("clearing checklist of task %s: %w", taskID, err)
	}
	return nil
}

// buildTaskWhere constructs the WHERE clause and args for a TaskFilter.
func buildTaskWhere(filter TaskFilter) (string, []any) {
	var conditions []string
	var args []any

	if filter.Status != nil {
		conditions = append(conditions, "tasks.status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.ExcludeStatus != nil {
		conditions = append(conditions, "tasks.status != ?")
		args = append(args, string(*filter.ExcludeStatus))
	}
	if filter.Priority != nil {
		conditions = append(conditions, "tasks.priority = ?")
		args = append(args, string(*filter.Priority))
	}
	if filter.AssignedTo != nil {
		conditions = append(conditions,
			"tasks.id IN (SELECT task_id FROM task_assignees WHERE user_id = ?)")
		args = append(args, *filter.AssignedTo)
	}
	if filter.DueBefore != nil {
		conditions = append(conditions, "tasks.due_date < ?")
		args = append(args, filter.DueBefore.UTC())
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// buildTaskOrder constructs ORDER BY and pagination. Offset only applies
// together with a positive Limit.
func buildTaskOrder(filter TaskFilter) string {
	sortBy := "tasks.created_at"
	if filter.SortBy != "" {
		allowed := map[string]string{
			"created_at": "tasks.created_at",
			"updated_at": "tasks.updated_at",
			"due_date":   "tasks.due_date",
			"title":      "tasks.title",
			"status":     "tasks.status",
			"priority":   "tasks.priority",
		}
		if col, ok := allowed[filter.SortBy]; ok {
			sortBy = col
		}
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	clause := fmt.Sprintf(" ORDER BY %s %s, tasks.id %s", sortBy, direction, direction)

	if filter.Limit > 0 {
		clause += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			clause += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}
	return clause
}

func marshalAttachments(attachments []string) (string, error) {
	if attachments == nil {
		attachments = []string{}
	}
	data, err := json.Marshal(attachments)
	if err != nil {
		return "", fmt.Errorf("marshaling attachments: %w", err)
	}
	return string(data), nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

package tasks

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/nhle/taskflow/internal/model"
)

// CreateInput is the body of a create request. Unset fields take their defaults.
type CreateInput struct {
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Priority      model.Priority        `json:"priority"`
	Status        model.Status          `json:"status"`
	DueDate       *string               `json:"dueDate"`
	AssignedTo    json.RawMessage       `json:"assignedTo"`
	Attachments   []string              `json:"attachments"`
	TodoChecklist []model.ChecklistItem `json:"todoChecklist"`
}

// UpdateInput is the body of a general update. A nil field keeps the
// stored value; assignedTo and todoChecklist replace wholesale when present.
type UpdateInput struct {
	Title         *string                `json:"title"`
	Description   *string                `json:"description"`
	Priority      *model.Priority        `json:"priority"`
	DueDate       *string                `json:"dueDate"`
	AssignedTo    json.RawMessage        `json:"assignedTo"`
	Attachments   *[]string              `json:"attachments"`
	TodoChecklist *[]model.ChecklistItem `json:"todoChecklist"`
}

// StatusInput is the body of a direct status update.
type StatusInput struct {
	Status *model.Status `json:"status"`
}

// ChecklistInput is the body of a checklist update.
type ChecklistInput struct {
	TodoChecklist *[]model.ChecklistItem `json:"todoChecklist"`
}

// dueDateLayouts are tried in order when parsing a due date.
var dueDateLayouts = []string{time.RFC3339Nano, time.DateOnly}

// ParseDueDate accepts an RFC 3339 timestamp or a bare date, which is
// taken as midnight UTC.
func ParseDueDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, model.Validationf("Invalid dueDate %q", value)
}

// absent reports whether a raw JSON field was omitted or null.
func absent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// parseAssignees decodes assignedTo, which must be a non-empty array of
// non-empty user IDs. Duplicates are dropped, order is kept.
func parseAssignees(raw json.RawMessage) ([]string, error) {
	var ids []string
	if absent(raw) || json.Unmarshal(raw, &ids) != nil {
		return nil, model.Validationf("assignedTo must be an array of user IDs")
	}
	if len(ids) == 0 {
		return nil, model.Validationf("assignedTo must not be empty")
	}

	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, model.Validationf("assignedTo must be an array of user IDs")
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}

func validateChecklist(items []model.ChecklistItem) error {
	for i, item := range items {
		if strings.TrimSpace(item.Text) == "" {
			return model.Validationf("todoChecklist item %d has no text", i+1)
		}
	}
	return nil
}

func validatePriority(p model.Priority) error {
	if !p.Valid() {
		return model.Validationf("Invalid priority %q", p)
	}
	return nil
}

func validateStatus(s model.Status) error {
	if !s.Valid() {
		return model.Validationf("Invalid status %q", s)
	}
	return nil
}

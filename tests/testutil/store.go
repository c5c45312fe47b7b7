package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/store"
)

// NewTestStore creates an in-memory SQLStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// Epoch is the fixed instant fixtures are stamped with.
var Epoch = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// CreateUser inserts a user with the given name and role. The email is
// derived from the name and the password hash is a placeholder.
func CreateUser(t *testing.T, s store.Store, name string, role model.Role) model.User {
	t.Helper()

	user := model.User{
		Name:      name,
		Email:     name + "@example.com",
		Password:  "x",
		Role:      role,
		CreatedAt: Epoch,
		UpdatedAt: Epoch,
	}
	if err := s.CreateUser(context.Background(), &user); err != nil {
		t.Fatalf("creating user %s: %v", name, err)
	}
	return user
}

// CreateTask inserts task after filling unset defaults.
func CreateTask(t *testing.T, s store.Store, task model.Task) model.Task {
	t.Helper()

	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}
	if task.Status == "" {
		task.Status = model.StatusPending
	}
	if task.CreatedBy == "" {
		task.CreatedBy = "admin"
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = Epoch
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = task.CreatedAt
	}
	if err := s.CreateTask(context.Background(), &task); err != nil {
		t.Fatalf("creating task %q: %v", task.Title, err)
	}
	return task
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

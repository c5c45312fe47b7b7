// Package api exposes the task services over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/taskflow/internal/auth"
	"github.com/nhle/taskflow/internal/report"
	"github.com/nhle/taskflow/internal/tasks"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services the HTTP surface is built on.
type Deps struct {
	Store   Pinger
	Auth    *auth.Service
	Tasks   *tasks.Service
	Reports *report.Service
}

// Register adds every route to mux. Each request's service calls are
// bounded by timeout.
func Register(mux *http.ServeMux, log zerolog.Logger, deps Deps, timeout time.Duration) {
	private := Protect(log, deps.Auth, timeout)

	// ping
	mux.Handle("GET /api/ping", NewPingHandler(log, deps.Store, timeout))

	// auth
	mux.Handle("POST /api/auth/register", NewRegisterHandler(log, deps.Auth, timeout))
	mux.Handle("POST /api/auth/login", NewLoginHandler(log, deps.Auth, timeout))
	mux.Handle("GET /api/auth/profile", private(NewGetProfileHandler(log, deps.Auth, timeout)))
	mux.Handle("PUT /api/auth/profile", private(NewUpdateProfileHandler(log, deps.Auth, timeout)))
	mux.Handle("PUT /api/auth/reset-password/{id}", private(NewResetPasswordHandler(log, deps.Auth, timeout)))

	// users
	mux.Handle("GET /api/users", private(NewListUsersHandler(log, deps.Reports, timeout)))
	mux.Handle("GET /api/users/{id}", private(NewGetUserHandler(log, deps.Auth, timeout)))

	// dashboards
	mux.Handle("GET /api/tasks/dashboard-data", private(NewAdminDashboardHandler(log, deps.Reports, timeout)))
	mux.Handle("GET /api/tasks/user-dashboard-data", private(NewUserDashboardHandler(log, deps.Reports, timeout)))

	// tasks
	mux.Handle("GET /api/tasks", private(NewListTasksHandler(log, deps.Tasks, deps.Reports, timeout)))
	mux.Handle("GET /api/tasks/{id}", private(NewGetTaskHandler(log, deps.Tasks, timeout)))
	mux.Handle("POST /api/tasks", private(NewCreateTaskHandler(log, deps.Tasks, timeout)))
	mux.Handle("PUT /api/tasks/{id}", private(NewUpdateTaskHandler(log, deps.Tasks, timeout)))
	mux.Handle("DELETE /api/tasks/{id}", private(NewDeleteTaskHandler(log, deps.Tasks, timeout)))
	mux.Handle("PUT /api/tasks/{id}/status", private(NewUpdateStatusHandler(log, deps.Tasks, timeout)))
	mux.Handle("PUT /api/tasks/{id}/todo", private(NewUpdateChecklistHandler(log, deps.Tasks, timeout)))

	// reports
	mux.Handle("GET /api/reports/export/tasks", private(NewExportTasksHandler(log, deps.Reports, timeout)))
	mux.Handle("GET /api/reports/export/users", private(NewExportUsersHandler(log, deps.Reports, timeout)))
}

// NewHandler returns the complete HTTP handler: routes plus access logging.
func NewHandler(log zerolog.Logger, deps Deps, timeout time.Duration) http.Handler {
	mux := http.NewServeMux()
	Register(mux, log, deps, timeout)
	return AccessLog(log)(mux)
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/taskflow/internal/api/res"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/report"
)

func NewListUsersHandler(log zerolog.Logger, svc *report.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFrom(r.Context())
		if !ok {
			res.Message(w, "Not authorized, no token", http.StatusUnauthorized)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		users, err := svc.Members(ctx, actor)
		if err != nil {
			WriteErr(w, log, err)
			return
		}
		res.Json(w, users, http.StatusOK)
	}
}

func NewAdminDashboardHandler(log zerolog.Logger, svc *report.Service, timeout time.Duration) http.HandlerFunc {
	return newDashboardHandler(log, timeout, svc.AdminDashboard)
}

func NewUserDashboardHandler(log zerolog.Logger, svc *report.Service, timeout time.Duration) http.HandlerFunc {
	return newDashboardHandler(log, timeout, svc.UserDashboard)
}

func newDashboardHandler(
	log zerolog.Logger,
	timeout time.Duration,
	dashboard func(context.Context, model.Actor) (*model.Dashboard, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFrom(r.Context())
		if !ok {
			res.Message(w, "Not authorized, no token", http.StatusUnauthorized)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		d, err := dashboard(ctx, actor)
		if err != nil {
			WriteErr(w, log, err)
			return
		}
		res.Json(w, d, http.StatusOK)
	}
}

func NewExportTasksHandler(log zerolog.Logger, svc *report.Service, timeout time.Duration) http.HandlerFunc {
	return newExportHandler(log, timeout, "tasks_report.csv", svc.ExportTasks)
}

func NewExportUsersHandler(log zerolog.Logger, svc *report.Service, timeout time.Duration) http.HandlerFunc {
	return newExportHandler(log, timeout, "users_report.csv", svc.ExportUsers)
}

// newExportHandler buffers the export so that a failure midway still
// produces a proper error response.
func newExportHandler(
	log zerolog.Logger,
	timeout time.Duration,
	filename string,
	export func(context.Context, model.Actor, io.Writer) error,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFrom(r.Context())
		if !ok {
			res.Message(w, "Not authorized, no token", http.StatusUnauthorized)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		var buf bytes.Buffer
		if err := export(ctx, actor, &buf); err != nil {
			WriteErr(w, log, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}

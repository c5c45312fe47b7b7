package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/taskflow/internal/api/res"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/report"
	"github.com/nhle/taskflow/internal/tasks"
)

type listTasksOut struct {
	Tasks         []model.TaskView    `json:"tasks"`
	StatusSummary model.StatusSummary `json:"statusSummary"`
}

func NewListTasksHandler(log zerolog.Logger, svc *tasks.Service, reports *report.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFrom(r.Context())
		if !ok {
			res.Message(w, "Not authorized, no token", http.StatusUnauthorized)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		list, err := svc.List(ctx, actor, r.URL.Query().Get("status"))
		if err != nil {
			WriteErr(w, log, err)
			return
		}
		summary, err := reports.StatusSummary(ctx, actor)
		if err != nil {
			WriteErr(w, log, err)
			return
		}
		res.Json(w, listTasksOut{Tasks: list, StatusSummary: *summary}, http.StatusOK)
	}
}

func NewGetTaskHandler(log zerolog.Logger, svc *tasks.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFrom(r.Context())
		if !ok {
			res.Message(w, "Not authorized, no token", http.StatusUnauthorized)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		task, err := svc.Get(ctx, actor, r.PathValue("id"))
		if err != nil {
			WriteErr(w, log, err)
			return
		}
		res.Json(w, task, http.StatusOK)
	}
}

func NewCreateTaskHandler(log zerolog.Logger, svc *tasks.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFrom(r.Context())
		if !ok {
			res.Message(w, "Not authorized, no token", http.StatusUnauthorized)
			return
		}
		var in tasks.CreateInput
		if err := decode(r, &in); err != nil {
			writeBadJSON(w)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		task, err := svc.Create(ctx, actor, in)
		if err != nil {
			WriteErr(w, log, err)
			return
		}
		res.Json(w, map[string]any{
			"message": "Task created successfully",
			"task":    task,
		}, http.StatusCreated)
	}
}

func NewUpdateTaskHandler(log zerolog.Logger, svc *tasks.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFrom(r.Context())
		if !ok {
			res.Message(w, "Not authorized, no token", http.StatusUnauthorized)
			return
		}
		var in tasks.UpdateInput
		if err := decode(r, &in); err != nil {
			writeBadJSON(w)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		task, err := svc.Update(ctx, actor, r.PathValue("id"), in)
		if err != nil {
			WriteErr(w, log, err)
			return
		}
		res.Json(w, map[string]any{
			"message":     "Task updated successfully",
			"updatedTask": task,
		}, http.StatusOK)
	}
}

func NewDeleteTaskHandler(log zerolog.Logger, svc *tasks.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFrom(r.Context())
		if !ok {
			res.Message(w, "Not authorized, no token", http.StatusUnauthorized)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		if err := svc.Delete(ctx, actor, r.PathValue("id")); err != nil {
			WriteErr(w, log, err)
			return
		}
		res.Message(w, "Task deleted successfully", http.StatusOK)
	}
}

func NewUpdateStatusHandler(log zerolog.Logger, svc *tasks.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFrom(r.Context())
		if !ok {
			res.Message(w, "Not authorized, no token", http.StatusUnauthorized)
			return
		}
		var in tasks.StatusInput
		if err := decode(r, &in); err != nil {
			writeBadJSON(w)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		task, err := svc.UpdateStatus(ctx, actor, r.PathValue("id"), in)
		if err != nil {
			WriteErr(w, log, err)
			return
		}
		res.Json(w, map[string]any{
			"message": "Task status updated",
			"task":    task,
		}, http.StatusOK)
	}
}

func NewUpdateChecklistHandler(log zerolog.Logger, svc *tasks.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFrom(r.Context())
		if !ok {
			res.Message(w, "Not authorized, no token", http.StatusUnauthorized)
			return
		}
		var in tasks.ChecklistInput
		if err := decode(r, &in); err != nil {
			writeBadJSON(w)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		task, err := svc.UpdateChecklist(ctx, actor, r.PathValue("id"), in)
		if err != nil {
			WriteErr(w, log, err)
			return
		}
		res.Json(w, map[string]any{
			"message": "Task checklist updated",
			"task":    task,
		}, http.StatusOK)
	}
}

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/taskflow/internal/api/res"
	"github.com/nhle/taskflow/internal/auth"
)

func NewRegisterHandler(log zerolog.Logger, svc *auth.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in auth.RegisterInput
		if err := decode(r, &in); err != nil {
			writeBadJSON(w)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		session, err := svc.Register(ctx, in)
		if err != nil {
			WriteErr(w, log, err)
			return
		}
		res.Json(w, session, http.StatusCreated)
	}
}

func NewLoginHandler(log zerolog.Logger, svc *auth.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in auth.LoginInput
		if err := decode(r, &in); err != nil {
			writeBadJSON(w)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		session, err := svc.Login(ctx, in)
		if err != nil {
			WriteErr(w, log, err)
			return
		}
		res.Json(w, session, http.StatusOK)
	}
}

func NewGetProfileHandler(log zerolog.Logger, svc *auth.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFrom(r.Context())
		if !ok {
			res.Message(w, "Not authorized, no token", http.StatusUnauthorized)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		user, err := svc.Profile(ctx, actor)
		if err != nil {
			WriteErr(w, log, err)
			return
		}
		res.Json(w, user, http.StatusOK)
	}
}

func NewUpdateProfileHandler(log zerolog.Logger, svc *auth.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFrom(r.Context())
		if !ok {
			res.Message(w, "Not authorized, no token", http.StatusUnauthorized)
			return
		}
		var in auth.ProfileInput
		if err := decode(r, &in); err != nil {
			writeBadJSON(w)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		session, err := svc.UpdateProfile(ctx, actor, in)
		if err != nil {
			WriteErr(w, log, err)
			return
		}
		res.Json(w, session, http.StatusOK)
	}
}

func NewGetUserHandler(log zerolog.Logger, svc *auth.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFrom(r.Context())
		if !ok {
			res.Message(w, "Not authorized, no token", http.StatusUnauthorized)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		user, err := svc.User(ctx, actor, r.PathValue("id"))
		if err != nil {
			WriteErr(w, log, err)
			return
		}
		res.Json(w, user, http.StatusOK)
	}
}

func NewResetPasswordHandler(log zerolog.Logger, svc *auth.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFrom(r.Context())
		if !ok {
			res.Message(w, "Not authorized, no token", http.StatusUnauthorized)
			return
		}
		var in auth.ResetPasswordInput
		if err := decode(r, &in); err != nil {
			writeBadJSON(w)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		if err := svc.ResetPassword(ctx, actor, r.PathValue("id"), in.NewPassword); err != nil {
			WriteErr(w, log, err)
			return
		}
		res.Message(w, "Password updated successfully", http.StatusOK)
	}
}

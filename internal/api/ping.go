package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/taskflow/internal/api/res"
)

func NewPingHandler(log zerolog.Logger, store Pinger, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("store unreachable")
			res.Json(w, map[string]any{"store": "unavailable"}, http.StatusServiceUnavailable)
			return
		}
		res.Json(w, map[string]any{"store": "ok"}, http.StatusOK)
	}
}

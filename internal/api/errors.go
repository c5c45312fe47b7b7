package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/nhle/taskflow/internal/api/res"
	"github.com/nhle/taskflow/internal/model"
)

// WriteErr maps err to a status code and writes it. Client errors carry
// their own message; anything else is a server error whose cause is
// logged and echoed for diagnostics.
func WriteErr(w http.ResponseWriter, log zerolog.Logger, err error) {
	var clientErr *model.Error
	if errors.As(err, &clientErr) {
		switch {
		case errors.Is(err, model.ErrValidation):
			res.Message(w, clientErr.Message, http.StatusBadRequest)
			return
		case errors.Is(err, model.ErrUnauthorized):
			res.Message(w, clientErr.Message, http.StatusUnauthorized)
			return
		case errors.Is(err, model.ErrForbidden):
			res.Message(w, clientErr.Message, http.StatusForbidden)
			return
		case errors.Is(err, model.ErrNotFound):
			res.Message(w, clientErr.Message, http.StatusNotFound)
			return
		case errors.Is(err, model.ErrConflict):
			res.Message(w, clientErr.Message, http.StatusConflict)
			return
		}
	}

	log.Error().Err(err).Msg("request failed")
	res.Json(w, map[string]any{
		"message": "Server error",
		"error":   err.Error(),
	}, http.StatusInternalServerError)
}

func writeBadJSON(w http.ResponseWriter) {
	res.Message(w, "Invalid JSON body", http.StatusBadRequest)
}

// Package res writes JSON responses.
package res

import (
	"encoding/json"
	"net/http"
)

// Json writes data as a JSON body with the given status code.
func Json(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// Message writes {"message": msg}.
func Message(w http.ResponseWriter, msg string, statusCode int) {
	Json(w, map[string]any{"message": msg}, statusCode)
}

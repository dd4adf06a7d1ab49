package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/americare/flourish/internal/survey"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

// writeServiceError maps the survey sentinel errors onto HTTP statuses.
// Handlers that need a different mapping (the import endpoint returns
// 400 for invalid documents) check the sentinel themselves first.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, survey.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, survey.ErrInvalidState), errors.Is(err, survey.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		logger.Error("request failed", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

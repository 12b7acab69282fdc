package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/costwise/backend/internal/model"
	"github.com/costwise/backend/internal/repository"
	"github.com/costwise/backend/internal/service"
)

// Handler holds what the non-entity endpoints need.
type Handler struct {
	db          repository.DB
	frontendURL string
}

func New(db repository.DB, frontendURL string) *Handler {
	return &Handler{db: db, frontendURL: frontendURL}
}

func (h *Handler) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", h.frontendURL)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError emits the standard error body {"error": code}.
func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// writeServiceError maps domain errors to status codes: not-found 404,
// validation 422 with field detail, conflicts and cycles 409, anything
// else 500 (logged).
func writeServiceError(w http.ResponseWriter, err error, logMsg string, logArgs ...any) {
	var ve *model.ValidationError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation_failed",
			"fields": ve.Fields,
		})
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, "conflict")
	case errors.Is(err, service.ErrCycle):
		writeError(w, http.StatusConflict, "cycle")
	default:
		slog.Error(logMsg, append([]any{"error", err}, logArgs...)...)
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}

// pagination reads offset/limit query params with the list defaults
// (offset 0, limit 100, limit clamped to 1..100).
func pagination(r *http.Request) (limit, offset int) {
	limit, offset = 100, 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// parseDate parses "YYYY-MM-DD" or RFC3339 into *time.Time; empty gives nil.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	return nil
}

// dateField parses an optional date input. A value that is present but
// not a recognized format records a field error instead of being dropped.
func dateField(s, field string, v *model.ValidationError) *time.Time {
	if s == "" {
		return nil
	}
	t := parseDate(s)
	if t == nil {
		v.Add(field, "must be YYYY-MM-DD or RFC 3339")
	}
	return t
}

// isJSONNull reports whether raw holds an explicit null for key.
func isJSONNull(raw map[string]json.RawMessage, key string) bool {
	v, ok := raw[key]
	return ok && string(v) == "null"
}

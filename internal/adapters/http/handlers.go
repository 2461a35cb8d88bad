package web

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	rotationEventStore "clubgrid/internal/adapters/storage/rotationevent"
	"clubgrid/internal/application/orchestrators"
	"clubgrid/internal/domain/rotation"
	scheduleDomain "clubgrid/internal/domain/schedule"
)

// validationErrors are reported to the client as 400 with their message.
var validationErrors = []error{
	rotation.ErrInvalidDay,
	rotation.ErrEmptyHubID,
	rotation.ErrEmptyLevel,
	rotation.ErrInvalidWindow,
	rotation.ErrEmptyEventID,
	rotation.ErrInvalidColor,
	rotation.ErrEmptyEventName,
	rotation.ErrInvalidTime,
	scheduleDomain.ErrEmptyID,
	orchestrators.ErrEventOtherHub,
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// writeError maps domain and storage errors to a status code.
func writeError(w http.ResponseWriter, err error) {
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	switch {
	case errors.Is(err, sql.ErrNoRows):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, orchestrators.ErrBlockNotOnGrid):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, rotationEventStore.ErrInUse):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		internalError(w, err)
	}
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response_encode_failed", "error", err.Error())
	}
}

// requireMethod writes 405 unless r uses one of methods.
func requireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	return false
}

// handleHealthz reports whether the database answers.
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	if _, err := stores.RotationEvents.ListByHub(r.Context(), ""); err != nil {
		slog.Warn("healthz_failed", "error", err.Error())
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Write([]byte("ok"))
}

package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/edvin/crisisdesk/internal/core"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ListResponse wraps a collection.
type ListResponse struct {
	Items any `json:"items"`
	Count int `json:"count"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Error: message})
}

// WriteList writes items with their count.
func WriteList(w http.ResponseWriter, items any, count int) {
	WriteJSON(w, http.StatusOK, ListResponse{Items: items, Count: count})
}

var serviceErrors = []struct {
	err    error
	status int
	code   string
}{
	{core.ErrNotFound, http.StatusNotFound, "not_found"},
	{core.ErrValidation, http.StatusBadRequest, "validation"},
	{core.ErrForbidden, http.StatusForbidden, "forbidden"},
	{core.ErrConflict, http.StatusConflict, "conflict"},
	{core.ErrAlreadyAssigned, http.StatusConflict, "already_assigned"},
	{core.ErrAlreadyReleased, http.StatusConflict, "already_released"},
	{core.ErrIncidentClosed, http.StatusUnprocessableEntity, "incident_closed"},
	{core.ErrInvalidTransition, http.StatusUnprocessableEntity, "invalid_transition"},
	{core.ErrCapacityExceeded, http.StatusUnprocessableEntity, "capacity_exceeded"},
	{core.ErrTeamUnavailable, http.StatusUnprocessableEntity, "team_unavailable"},
	{core.ErrResourceUnavailable, http.StatusUnprocessableEntity, "resource_unavailable"},
}

// WriteServiceError maps a core error onto an HTTP status. Unknown errors
// become a 500 without leaking their text.
func WriteServiceError(w http.ResponseWriter, err error) {
	for _, se := range serviceErrors {
		if errors.Is(err, se.err) {
			WriteJSON(w, se.status, ErrorResponse{Error: err.Error(), Code: se.code})
			return
		}
	}
	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: "internal"})
}

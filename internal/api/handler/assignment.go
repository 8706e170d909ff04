package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/crisisdesk/internal/api/request"
	"github.com/edvin/crisisdesk/internal/api/response"
	"github.com/edvin/crisisdesk/internal/model"
	"github.com/edvin/crisisdesk/internal/platform"
)

type Assignment struct {
	svc LedgerService
}

func NewAssignment(svc LedgerService) *Assignment {
	return &Assignment{svc: svc}
}

// Assign allocates a resource to the incident in the URL.
func (h *Assignment) Assign(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	incidentID, err := request.RequireName(platform.IncidentPrefix, chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.AssignResource
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	resourceID, err := request.RequireName(platform.ResourcePrefix, req.ResourceID)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := h.svc.AssignResource(r.Context(), incidentID, resourceID, actor, req.Notes)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, a)
}

// ListByIncident lists an incident's assignments; ?active=true hides released ones.
func (h *Assignment) ListByIncident(w http.ResponseWriter, r *http.Request) {
	incidentID, err := request.RequireName(platform.IncidentPrefix, chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	activeOnly := false
	if v := r.URL.Query().Get("active"); v != "" {
		if activeOnly, err = strconv.ParseBool(v); err != nil {
			response.WriteError(w, http.StatusBadRequest, "invalid active flag")
			return
		}
	}

	assignments, err := h.svc.ListAssignments(r.Context(), incidentID, activeOnly)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	if assignments == nil {
		assignments = []model.Assignment{}
	}
	response.WriteList(w, assignments, len(assignments))
}

func (h *Assignment) Release(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := request.RequireUUID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := h.svc.ReleaseResource(r.Context(), id, actor)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, a)
}

// ReleaseAll frees every active assignment of an incident.
func (h *Assignment) ReleaseAll(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	incidentID, err := request.RequireName(platform.IncidentPrefix, chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	released, err := h.svc.BulkReleaseForIncident(r.Context(), incidentID, actor)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	if released == nil {
		released = []model.Assignment{}
	}
	response.WriteList(w, released, len(released))
}

package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/crisisdesk/internal/api/request"
	"github.com/edvin/crisisdesk/internal/api/response"
	"github.com/edvin/crisisdesk/internal/core"
	"github.com/edvin/crisisdesk/internal/model"
	"github.com/edvin/crisisdesk/internal/platform"
)

// LifecycleService is the part of core.LifecycleService the handlers use.
type LifecycleService interface {
	Report(ctx context.Context, actor model.Actor, in core.ReportIncident) (*model.Incident, error)
	AcceptIncident(ctx context.Context, incidentID string, team model.Actor) (*model.Incident, error)
	RequestTransition(ctx context.Context, req core.TransitionRequest) (*model.Incident, error)
	Get(ctx context.Context, id string) (*model.Incident, error)
	List(ctx context.Context, filters core.IncidentFilters) ([]model.Incident, error)
	ListAuditTrail(ctx context.Context, incidentID string) ([]model.StatusUpdate, error)
	Delete(ctx context.Context, actor model.Actor, incidentID string) error
}

type Incident struct {
	svc LifecycleService
}

func NewIncident(svc LifecycleService) *Incident {
	return &Incident{svc: svc}
}

// Report creates a pending incident for the calling reporter.
func (h *Incident) Report(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req request.ReportIncident
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	inc, err := h.svc.Report(r.Context(), actor, core.ReportIncident{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    model.Priority(req.Priority),
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Address:     req.Address,
		MediaID:     req.MediaID,
	})
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, inc)
}

func (h *Incident) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	incidents, err := h.svc.List(r.Context(), core.IncidentFilters{
		Status:     model.IncidentStatus(q.Get("status")),
		ReporterID: q.Get("reporter_id"),
		TeamID:     q.Get("team_id"),
		Limit:      request.ParseLimit(r),
	})
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	if incidents == nil {
		incidents = []model.Incident{}
	}
	response.WriteList(w, incidents, len(incidents))
}

func (h *Incident) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireName(platform.IncidentPrefix, chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	inc, err := h.svc.Get(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, inc)
}

// Transition moves an incident to the requested status on behalf of the caller.
func (h *Incident) Transition(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := request.RequireName(platform.IncidentPrefix, chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.TransitionIncident
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	inc, err := h.svc.RequestTransition(r.Context(), core.TransitionRequest{
		IncidentID: id,
		Target:     model.IncidentStatus(req.Status),
		Actor:      actor,
		Notes:      req.Notes,
		TeamID:     req.TeamID,
		MediaID:    req.MediaID,
		Expected:   model.IncidentStatus(req.ExpectedStatus),
	})
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, inc)
}

// Accept lets a rescue team take a pending incident.
func (h *Incident) Accept(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := request.RequireName(platform.IncidentPrefix, chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	inc, err := h.svc.AcceptIncident(r.Context(), id, actor)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, inc)
}

// AuditTrail lists the incident's status updates, most recent first.
func (h *Incident) AuditTrail(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireName(platform.IncidentPrefix, chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	updates, err := h.svc.ListAuditTrail(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	if updates == nil {
		updates = []model.StatusUpdate{}
	}
	response.WriteList(w, updates, len(updates))
}

func (h *Incident) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := request.RequireName(platform.IncidentPrefix, chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Delete(r.Context(), actor, id); err != nil {
		response.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

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

// LedgerService is the part of core.LedgerService the handlers use.
type LedgerService interface {
	CreateResource(ctx context.Context, actor model.Actor, in core.NewResource) (*model.Resource, error)
	GetResource(ctx context.Context, id string) (*model.Resource, error)
	ListResources(ctx context.Context, availability model.Availability) ([]model.Resource, error)
	SetAvailability(ctx context.Context, actor model.Actor, id string, availability model.Availability) (*model.Resource, error)
	DeleteResource(ctx context.Context, actor model.Actor, id string) error
	AssignResource(ctx context.Context, incidentID, resourceID string, actor model.Actor, notes string) (*model.Assignment, error)
	ReleaseResource(ctx context.Context, assignmentID string, actor model.Actor) (*model.Assignment, error)
	BulkReleaseForIncident(ctx context.Context, incidentID string, actor model.Actor) ([]model.Assignment, error)
	ListAssignments(ctx context.Context, incidentID string, activeOnly bool) ([]model.Assignment, error)
}

type Resource struct {
	svc LedgerService
}

func NewResource(svc LedgerService) *Resource {
	return &Resource{svc: svc}
}

func (h *Resource) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req request.CreateResource
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.CreateResource(r.Context(), actor, core.NewResource{
		Name:         req.Name,
		Category:     req.Category,
		Description:  req.Description,
		Location:     req.Location,
		Availability: model.Availability(req.Availability),
	})
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, res)
}

func (h *Resource) List(w http.ResponseWriter, r *http.Request) {
	availability := model.Availability(r.URL.Query().Get("availability"))
	if availability != "" && !availability.Valid() {
		response.WriteError(w, http.StatusBadRequest, "unknown availability "+string(availability))
		return
	}

	resources, err := h.svc.ListResources(r.Context(), availability)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	if resources == nil {
		resources = []model.Resource{}
	}
	response.WriteList(w, resources, len(resources))
}

func (h *Resource) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireName(platform.ResourcePrefix, chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.GetResource(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, res)
}

// UpdateAvailability takes a resource in or out of service.
func (h *Resource) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := request.RequireName(platform.ResourcePrefix, chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateAvailability
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.SetAvailability(r.Context(), actor, id, model.Availability(req.Availability))
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, res)
}

func (h *Resource) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := request.RequireName(platform.ResourcePrefix, chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.DeleteResource(r.Context(), actor, id); err != nil {
		response.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

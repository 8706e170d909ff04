package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/edvin/crisisdesk/internal/core"
	"github.com/edvin/crisisdesk/internal/model"
)

type mockLifecycle struct {
	mock.Mock
}

func (m *mockLifecycle) Report(ctx context.Context, actor model.Actor, in core.ReportIncident) (*model.Incident, error) {
	args := m.Called(ctx, actor, in)
	inc, _ := args.Get(0).(*model.Incident)
	return inc, args.Error(1)
}

func (m *mockLifecycle) AcceptIncident(ctx context.Context, incidentID string, team model.Actor) (*model.Incident, error) {
	args := m.Called(ctx, incidentID, team)
	inc, _ := args.Get(0).(*model.Incident)
	return inc, args.Error(1)
}

func (m *mockLifecycle) RequestTransition(ctx context.Context, req core.TransitionRequest) (*model.Incident, error) {
	args := m.Called(ctx, req)
	inc, _ := args.Get(0).(*model.Incident)
	return inc, args.Error(1)
}

func (m *mockLifecycle) Get(ctx context.Context, id string) (*model.Incident, error) {
	args := m.Called(ctx, id)
	inc, _ := args.Get(0).(*model.Incident)
	return inc, args.Error(1)
}

func (m *mockLifecycle) List(ctx context.Context, filters core.IncidentFilters) ([]model.Incident, error) {
	args := m.Called(ctx, filters)
	incidents, _ := args.Get(0).([]model.Incident)
	return incidents, args.Error(1)
}

func (m *mockLifecycle) ListAuditTrail(ctx context.Context, incidentID string) ([]model.StatusUpdate, error) {
	args := m.Called(ctx, incidentID)
	updates, _ := args.Get(0).([]model.StatusUpdate)
	return updates, args.Error(1)
}

func (m *mockLifecycle) Delete(ctx context.Context, actor model.Actor, incidentID string) error {
	args := m.Called(ctx, actor, incidentID)
	return args.Error(0)
}

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) CreateResource(ctx context.Context, actor model.Actor, in core.NewResource) (*model.Resource, error) {
	args := m.Called(ctx, actor, in)
	res, _ := args.Get(0).(*model.Resource)
	return res, args.Error(1)
}

func (m *mockLedger) GetResource(ctx context.Context, id string) (*model.Resource, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*model.Resource)
	return res, args.Error(1)
}

func (m *mockLedger) ListResources(ctx context.Context, availability model.Availability) ([]model.Resource, error) {
	args := m.Called(ctx, availability)
	resources, _ := args.Get(0).([]model.Resource)
	return resources, args.Error(1)
}

func (m *mockLedger) SetAvailability(ctx context.Context, actor model.Actor, id string, availability model.Availability) (*model.Resource, error) {
	args := m.Called(ctx, actor, id, availability)
	res, _ := args.Get(0).(*model.Resource)
	return res, args.Error(1)
}

func (m *mockLedger) DeleteResource(ctx context.Context, actor model.Actor, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *mockLedger) AssignResource(ctx context.Context, incidentID, resourceID string, actor model.Actor, notes string) (*model.Assignment, error) {
	args := m.Called(ctx, incidentID, resourceID, actor, notes)
	a, _ := args.Get(0).(*model.Assignment)
	return a, args.Error(1)
}

func (m *mockLedger) ReleaseResource(ctx context.Context, assignmentID string, actor model.Actor) (*model.Assignment, error) {
	args := m.Called(ctx, assignmentID, actor)
	a, _ := args.Get(0).(*model.Assignment)
	return a, args.Error(1)
}

func (m *mockLedger) BulkReleaseForIncident(ctx context.Context, incidentID string, actor model.Actor) ([]model.Assignment, error) {
	args := m.Called(ctx, incidentID, actor)
	released, _ := args.Get(0).([]model.Assignment)
	return released, args.Error(1)
}

func (m *mockLedger) ListAssignments(ctx context.Context, incidentID string, activeOnly bool) ([]model.Assignment, error) {
	args := m.Called(ctx, incidentID, activeOnly)
	assignments, _ := args.Get(0).([]model.Assignment)
	return assignments, args.Error(1)
}

var (
	_ LifecycleService = (*mockLifecycle)(nil)
	_ LedgerService    = (*mockLedger)(nil)
	_ LifecycleService = (*core.LifecycleService)(nil)
	_ LedgerService    = (*core.LedgerService)(nil)
)

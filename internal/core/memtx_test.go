package core

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/edvin/crisisdesk/internal/model"
)

// memStore is an in-memory TxRunner. Transactions are serialized and work on
// a copy of the state that replaces the committed state only when fn succeeds.
type memStore struct {
	mu    sync.Mutex
	state memState

	// failAppend, when set, is returned by AppendStatusUpdate.
	failAppend error
	commits    int
}

type memState struct {
	incidents   map[string]model.Incident
	order       []string
	updates     []model.StatusUpdate
	resources   map[string]model.Resource
	assignments []model.Assignment
}

func newMemStore() *memStore {
	return &memStore{state: memState{
		incidents: map[string]model.Incident{},
		resources: map[string]model.Resource{},
	}}
}

func (s memState) clone() memState {
	return memState{
		incidents:   maps.Clone(s.incidents),
		order:       slices.Clone(s.order),
		updates:     slices.Clone(s.updates),
		resources:   maps.Clone(s.resources),
		assignments: slices.Clone(s.assignments),
	}
}

func (m *memStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &memTx{store: m, state: m.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	m.state = tx.state
	m.commits++
	return nil
}

// seedIncident stores inc directly, bypassing the services.
func (m *memStore) seedIncident(inc model.Incident) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.incidents[inc.ID] = inc
	m.state.order = append(m.state.order, inc.ID)
}

func (m *memStore) seedResource(res model.Resource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.resources[res.ID] = res
}

func (m *memStore) incident(id string) model.Incident {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.incidents[id]
}

func (m *memStore) resource(id string) model.Resource {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.resources[id]
}

func (m *memStore) updatesFor(id string) []model.StatusUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.StatusUpdate
	for _, u := range m.state.updates {
		if u.IncidentID == id {
			out = append(out, u)
		}
	}
	return out
}

func (m *memStore) assignmentsFor(id string) []model.Assignment {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Assignment
	for _, a := range m.state.assignments {
		if a.IncidentID == id {
			out = append(out, a)
		}
	}
	return out
}

type memTx struct {
	store *memStore
	state memState
}

func (t *memTx) GetIncident(_ context.Context, id string) (*model.Incident, error) {
	inc, ok := t.state.incidents[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &inc, nil
}

func (t *memTx) LockIncident(ctx context.Context, id string) (*model.Incident, error) {
	return t.GetIncident(ctx, id)
}

func (t *memTx) ListIncidents(_ context.Context, f IncidentFilters) ([]model.Incident, error) {
	var out []model.Incident
	for i := len(t.state.order) - 1; i >= 0; i-- {
		inc, ok := t.state.incidents[t.state.order[i]]
		if !ok {
			continue
		}
		if f.Status != "" && inc.Status != f.Status {
			continue
		}
		if f.ReporterID != "" && inc.ReporterID != f.ReporterID {
			continue
		}
		if f.TeamID != "" && !inc.AssignedTo(f.TeamID) {
			continue
		}
		out = append(out, inc)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (t *memTx) InsertIncident(_ context.Context, inc *model.Incident) error {
	t.state.incidents[inc.ID] = *inc
	t.state.order = append(t.state.order, inc.ID)
	return nil
}

func (t *memTx) UpdateIncidentStatus(_ context.Context, c StatusChange) error {
	inc, ok := t.state.incidents[c.IncidentID]
	if !ok || inc.Status != c.From {
		return ErrConflict
	}
	inc.Status = c.To
	inc.AssignedTeamID = c.AssignedTeamID
	if c.ResolutionMediaID != nil {
		inc.ResolutionMediaID = c.ResolutionMediaID
	}
	inc.ResolvedAt = c.ResolvedAt
	inc.UpdatedAt = c.UpdatedAt
	t.state.incidents[c.IncidentID] = inc
	return nil
}

func (t *memTx) DeleteIncident(_ context.Context, id string) error {
	if _, ok := t.state.incidents[id]; !ok {
		return ErrNotFound
	}
	delete(t.state.incidents, id)
	t.state.updates = slices.DeleteFunc(t.state.updates, func(u model.StatusUpdate) bool { return u.IncidentID == id })
	t.state.assignments = slices.DeleteFunc(t.state.assignments, func(a model.Assignment) bool { return a.IncidentID == id })
	return nil
}

func (t *memTx) CountActiveIncidentsForTeam(_ context.Context, teamID string) (int, error) {
	n := 0
	for _, inc := range t.state.incidents {
		if inc.Status.Active() && inc.AssignedTo(teamID) {
			n++
		}
	}
	return n, nil
}

func (t *memTx) CountActiveIncidentsForReporter(_ context.Context, reporterID string) (int, error) {
	n := 0
	for _, inc := range t.state.incidents {
		if inc.Status.Active() && inc.ReporterID == reporterID {
			n++
		}
	}
	return n, nil
}

func (t *memTx) AppendStatusUpdate(_ context.Context, upd *model.StatusUpdate) error {
	if t.store.failAppend != nil {
		return t.store.failAppend
	}
	t.state.updates = append(t.state.updates, *upd)
	return nil
}

func (t *memTx) ListStatusUpdates(_ context.Context, incidentID string) ([]model.StatusUpdate, error) {
	var out []model.StatusUpdate
	for i := len(t.state.updates) - 1; i >= 0; i-- {
		if t.state.updates[i].IncidentID == incidentID {
			out = append(out, t.state.updates[i])
		}
	}
	return out, nil
}

func (t *memTx) GetResource(_ context.Context, id string) (*model.Resource, error) {
	res, ok := t.state.resources[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &res, nil
}

func (t *memTx) LockResource(ctx context.Context, id string) (*model.Resource, error) {
	return t.GetResource(ctx, id)
}

func (t *memTx) ListResources(_ context.Context, availability model.Availability) ([]model.Resource, error) {
	var out []model.Resource
	for _, res := range t.state.resources {
		if availability == "" || res.Availability == availability {
			out = append(out, res)
		}
	}
	slices.SortFunc(out, func(a, b model.Resource) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
	return out, nil
}

func (t *memTx) InsertResource(_ context.Context, res *model.Resource) error {
	t.state.resources[res.ID] = *res
	return nil
}

func (t *memTx) ClaimResource(_ context.Context, id string, at time.Time) error {
	res, ok := t.state.resources[id]
	if !ok || res.Availability != model.AvailabilityAvailable {
		return ErrConflict
	}
	res.Availability = model.AvailabilityInUse
	res.UpdatedAt = at
	t.state.resources[id] = res
	return nil
}

func (t *memTx) SetResourceAvailability(_ context.Context, id string, availability model.Availability, at time.Time) error {
	res, ok := t.state.resources[id]
	if !ok {
		return ErrNotFound
	}
	res.Availability = availability
	res.UpdatedAt = at
	t.state.resources[id] = res
	return nil
}

func (t *memTx) DeleteResource(_ context.Context, id string) error {
	if _, ok := t.state.resources[id]; !ok {
		return ErrNotFound
	}
	delete(t.state.resources, id)
	t.state.assignments = slices.DeleteFunc(t.state.assignments, func(a model.Assignment) bool { return a.ResourceID == id })
	return nil
}

func (t *memTx) GetAssignment(_ context.Context, id string) (*model.Assignment, error) {
	for _, a := range t.state.assignments {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (t *memTx) FindActiveAssignment(_ context.Context, incidentID, resourceID string) (*model.Assignment, error) {
	for _, a := range t.state.assignments {
		if a.IncidentID == incidentID && a.ResourceID == resourceID && a.Active() {
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (t *memTx) ListAssignments(_ context.Context, incidentID string, activeOnly bool) ([]model.Assignment, error) {
	var out []model.Assignment
	for _, a := range t.state.assignments {
		if a.IncidentID == incidentID && (!activeOnly || a.Active()) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (t *memTx) CountActiveAssignmentsForResource(_ context.Context, resourceID string) (int, error) {
	n := 0
	for _, a := range t.state.assignments {
		if a.ResourceID == resourceID && a.Active() {
			n++
		}
	}
	return n, nil
}

func (t *memTx) InsertAssignment(ctx context.Context, a *model.Assignment) error {
	if _, err := t.FindActiveAssignment(ctx, a.IncidentID, a.ResourceID); err == nil {
		return ErrAlreadyAssigned
	}
	t.state.assignments = append(t.state.assignments, *a)
	return nil
}

func (t *memTx) ReleaseAssignment(_ context.Context, id string, at time.Time) error {
	for i, a := range t.state.assignments {
		if a.ID != id {
			continue
		}
		if !a.Active() {
			return ErrAlreadyReleased
		}
		t.state.assignments[i].ReleasedAt = &at
		return nil
	}
	return ErrNotFound
}

// recordingSink collects published events.
type recordingSink struct {
	mu     sync.Mutex
	events []model.Event
	err    error
}

func (s *recordingSink) Publish(_ context.Context, evt model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
	return s.err
}

func (s *recordingSink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Type)
	}
	return out
}

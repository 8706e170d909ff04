package core

import (
	"context"
	"time"

	"github.com/edvin/crisisdesk/internal/model"
)

// TxRunner is the persistence transaction boundary. fn runs inside a single
// transaction which is committed when fn returns nil and rolled back otherwise.
// Implementations report lost write races as ErrConflict.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the store surface available inside one transaction.
type Tx interface {
	// GetIncident returns ErrNotFound when no row matches.
	GetIncident(ctx context.Context, id string) (*model.Incident, error)
	// LockIncident is GetIncident taking a row lock for the rest of the transaction.
	LockIncident(ctx context.Context, id string) (*model.Incident, error)
	ListIncidents(ctx context.Context, filters IncidentFilters) ([]model.Incident, error)
	InsertIncident(ctx context.Context, inc *model.Incident) error
	// UpdateIncidentStatus writes the change only if the stored status still
	// equals change.From, returning ErrConflict otherwise.
	UpdateIncidentStatus(ctx context.Context, change StatusChange) error
	DeleteIncident(ctx context.Context, id string) error
	CountActiveIncidentsForTeam(ctx context.Context, teamID string) (int, error)
	CountActiveIncidentsForReporter(ctx context.Context, reporterID string) (int, error)

	AppendStatusUpdate(ctx context.Context, upd *model.StatusUpdate) error
	// ListStatusUpdates returns the audit trail, most recent first.
	ListStatusUpdates(ctx context.Context, incidentID string) ([]model.StatusUpdate, error)

	GetResource(ctx context.Context, id string) (*model.Resource, error)
	LockResource(ctx context.Context, id string) (*model.Resource, error)
	ListResources(ctx context.Context, availability model.Availability) ([]model.Resource, error)
	InsertResource(ctx context.Context, res *model.Resource) error
	// ClaimResource flips an available resource to in_use, returning
	// ErrConflict if it is no longer available.
	ClaimResource(ctx context.Context, id string, at time.Time) error
	SetResourceAvailability(ctx context.Context, id string, availability model.Availability, at time.Time) error
	// DeleteResource removes the resource and its released assignments.
	DeleteResource(ctx context.Context, id string) error

	GetAssignment(ctx context.Context, id string) (*model.Assignment, error)
	// FindActiveAssignment returns ErrNotFound when the pair has no active link.
	FindActiveAssignment(ctx context.Context, incidentID, resourceID string) (*model.Assignment, error)
	ListAssignments(ctx context.Context, incidentID string, activeOnly bool) ([]model.Assignment, error)
	CountActiveAssignmentsForResource(ctx context.Context, resourceID string) (int, error)
	// InsertAssignment returns ErrAlreadyAssigned if an active link already exists.
	InsertAssignment(ctx context.Context, a *model.Assignment) error
	// ReleaseAssignment stamps released_at, returning ErrAlreadyReleased if it was already set.
	ReleaseAssignment(ctx context.Context, id string, at time.Time) error
}

// StatusChange is a conditional write of an incident's lifecycle fields.
type StatusChange struct {
	IncidentID        string
	From              model.IncidentStatus
	To                model.IncidentStatus
	AssignedTeamID    *string
	ResolutionMediaID *string
	ResolvedAt        *time.Time
	UpdatedAt         time.Time
}

// IncidentFilters holds optional filters for listing incidents.
type IncidentFilters struct {
	Status     model.IncidentStatus
	ReporterID string
	TeamID     string
	Limit      int
}

package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/crisisdesk/internal/metrics"
	"github.com/edvin/crisisdesk/internal/model"
	"github.com/edvin/crisisdesk/internal/platform"
)

// LedgerService keeps resource availability consistent with incident assignments.
type LedgerService struct {
	tx     TxRunner
	events EventSink
	logger zerolog.Logger
	now    func() time.Time
}

func NewLedgerService(tx TxRunner, events EventSink, logger zerolog.Logger) *LedgerService {
	return &LedgerService{
		tx:     tx,
		events: events,
		logger: logger.With().Str("component", "ledger").Logger(),
		now:    time.Now,
	}
}

// NewResource holds the fields of a resource being registered.
type NewResource struct {
	Name         string
	Category     string
	Description  string
	Location     string
	Availability model.Availability
}

func (s *LedgerService) CreateResource(ctx context.Context, actor model.Actor, in NewResource) (*model.Resource, error) {
	if err := requireAdmin(actor, "register resources"); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	switch in.Category {
	case model.ResourceVehicle, model.ResourceEquipment, model.ResourcePersonnel:
	default:
		return nil, fmt.Errorf("%w: unknown resource category %q", ErrValidation, in.Category)
	}
	availability := in.Availability
	if availability == "" {
		availability = model.AvailabilityAvailable
	}
	if !availability.Valid() || availability == model.AvailabilityInUse {
		return nil, fmt.Errorf("%w: resources cannot be created as %q", ErrValidation, availability)
	}

	now := s.now()
	res := &model.Resource{
		ID:           platform.NewName(platform.ResourcePrefix),
		Name:         name,
		Category:     in.Category,
		Description:  in.Description,
		Availability: availability,
		Location:     in.Location,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := s.tx.InTx(ctx, func(tx Tx) error {
		return tx.InsertResource(ctx, res)
	})
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}
	metrics.LedgerOpsTotal.WithLabelValues("create", "ok").Inc()
	return res, nil
}

func (s *LedgerService) GetResource(ctx context.Context, id string) (*model.Resource, error) {
	var res *model.Resource
	err := s.tx.InTx(ctx, func(tx Tx) error {
		var err error
		res, err = tx.GetResource(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get resource: %w", err)
	}
	return res, nil
}

// ListResources returns all resources, or only those with the given availability.
func (s *LedgerService) ListResources(ctx context.Context, availability model.Availability) ([]model.Resource, error) {
	if availability != "" && !availability.Valid() {
		return nil, fmt.Errorf("%w: unknown availability %q", ErrValidation, availability)
	}
	var resources []model.Resource
	err := s.tx.InTx(ctx, func(tx Tx) error {
		var err error
		resources, err = tx.ListResources(ctx, availability)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	return resources, nil
}

// SetAvailability changes a resource's availability by hand. in_use is owned
// by the ledger: it cannot be set directly and cannot be left while the
// resource still has an active assignment.
func (s *LedgerService) SetAvailability(ctx context.Context, actor model.Actor, id string, availability model.Availability) (*model.Resource, error) {
	if err := requireAdmin(actor, "change resource availability"); err != nil {
		return nil, err
	}
	if !availability.Valid() {
		return nil, fmt.Errorf("%w: unknown availability %q", ErrValidation, availability)
	}
	if availability == model.AvailabilityInUse {
		return nil, fmt.Errorf("%w: in_use is set by assigning the resource", ErrValidation)
	}

	var res *model.Resource
	err := s.tx.InTx(ctx, func(tx Tx) error {
		var err error
		res, err = tx.LockResource(ctx, id)
		if err != nil {
			return err
		}
		if res.Availability == model.AvailabilityInUse {
			active, err := tx.CountActiveAssignmentsForResource(ctx, id)
			if err != nil {
				return fmt.Errorf("count assignments: %w", err)
			}
			if active > 0 {
				return fmt.Errorf("%w: resource %s is assigned to an incident", ErrResourceUnavailable, id)
			}
		}
		now := s.now()
		if err := tx.SetResourceAvailability(ctx, id, availability, now); err != nil {
			return err
		}
		res.Availability = availability
		res.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("set availability: %w", err)
	}
	metrics.LedgerOpsTotal.WithLabelValues("set_availability", "ok").Inc()
	return res, nil
}

// DeleteResource removes a resource from the inventory together with its
// released assignment history. A resource still assigned to an incident is
// refused.
func (s *LedgerService) DeleteResource(ctx context.Context, actor model.Actor, id string) error {
	if err := requireAdmin(actor, "delete resources"); err != nil {
		return err
	}

	err := s.tx.InTx(ctx, func(tx Tx) error {
		if _, err := tx.LockResource(ctx, id); err != nil {
			return err
		}
		active, err := tx.CountActiveAssignmentsForResource(ctx, id)
		if err != nil {
			return fmt.Errorf("count assignments: %w", err)
		}
		if active > 0 {
			return fmt.Errorf("%w: resource %s is assigned to an incident", ErrResourceUnavailable, id)
		}
		return tx.DeleteResource(ctx, id)
	})
	if err != nil {
		metrics.LedgerOpsTotal.WithLabelValues("delete_resource", outcome(err)).Inc()
		return fmt.Errorf("delete resource: %w", err)
	}
	metrics.LedgerOpsTotal.WithLabelValues("delete_resource", "ok").Inc()

	s.logger.Info().Str("resource_id", id).Str("actor", actor.ID).Msg("resource deleted")
	return nil
}

// AssignResource links an available resource to a live incident, marks it
// in_use and records the note in the incident's audit trail.
func (s *LedgerService) AssignResource(ctx context.Context, incidentID, resourceID string, actor model.Actor, notes string) (*model.Assignment, error) {
	if err := requireAdmin(actor, "assign resources"); err != nil {
		return nil, err
	}

	now := s.now()
	var (
		assignment *model.Assignment
		inc        *model.Incident
	)
	err := s.tx.InTx(ctx, func(tx Tx) error {
		var err error
		inc, err = tx.LockIncident(ctx, incidentID)
		if err != nil {
			return fmt.Errorf("load incident: %w", err)
		}
		if inc.Status.Terminal() {
			return fmt.Errorf("%w: incident %s is %s", ErrIncidentClosed, inc.ID, inc.Status)
		}

		res, err := tx.LockResource(ctx, resourceID)
		if err != nil {
			return fmt.Errorf("load resource: %w", err)
		}

		if _, err := tx.FindActiveAssignment(ctx, incidentID, resourceID); err == nil {
			return fmt.Errorf("%w: %s on %s", ErrAlreadyAssigned, res.Name, inc.ID)
		} else if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("find assignment: %w", err)
		}

		if res.Availability != model.AvailabilityAvailable {
			return fmt.Errorf("%w: %s is %s", ErrResourceUnavailable, res.Name, res.Availability)
		}
		if err := tx.ClaimResource(ctx, res.ID, now); err != nil {
			return fmt.Errorf("claim resource: %w", err)
		}

		note := strings.TrimSpace(notes)
		if note == "" {
			note = "Resource assigned: " + res.Name
		}
		assignment = &model.Assignment{
			ID:         platform.NewID(),
			IncidentID: inc.ID,
			ResourceID: res.ID,
			Notes:      note,
			AssignedAt: now,
		}
		if err := tx.InsertAssignment(ctx, assignment); err != nil {
			return fmt.Errorf("insert assignment: %w", err)
		}

		if err := tx.AppendStatusUpdate(ctx, &model.StatusUpdate{
			ID:         platform.NewID(),
			IncidentID: inc.ID,
			OldStatus:  inc.Status,
			NewStatus:  inc.Status,
			Notes:      note,
			ActorID:    actor.ID,
			CreatedAt:  now,
		}); err != nil {
			return fmt.Errorf("append status update: %w", err)
		}
		return nil
	})
	if err != nil {
		metrics.LedgerOpsTotal.WithLabelValues("assign", outcome(err)).Inc()
		return nil, err
	}
	metrics.LedgerOpsTotal.WithLabelValues("assign", "ok").Inc()

	s.logger.Info().
		Str("incident_id", incidentID).
		Str("resource_id", resourceID).
		Str("assignment_id", assignment.ID).
		Msg("resource assigned")
	publish(ctx, s.events, s.logger, model.Event{
		Type:         model.EventResourceAssigned,
		IncidentID:   inc.ID,
		Title:        inc.Title,
		Priority:     inc.Priority,
		ActorID:      actor.ID,
		ActorRole:    actor.Role,
		NewStatus:    inc.Status,
		ReporterID:   inc.ReporterID,
		ResourceID:   resourceID,
		AssignmentID: assignment.ID,
		Notes:        assignment.Notes,
		OccurredAt:   now,
	})
	return assignment, nil
}

// ReleaseResource ends an assignment by hand and returns the resource to the
// available pool. Releases on finished incidents happen automatically and
// are refused here.
func (s *LedgerService) ReleaseResource(ctx context.Context, assignmentID string, actor model.Actor) (*model.Assignment, error) {
	if err := requireAdmin(actor, "release resources"); err != nil {
		return nil, err
	}

	now := s.now()
	var assignment *model.Assignment
	err := s.tx.InTx(ctx, func(tx Tx) error {
		var err error
		assignment, err = tx.GetAssignment(ctx, assignmentID)
		if err != nil {
			return fmt.Errorf("load assignment: %w", err)
		}
		if !assignment.Active() {
			return fmt.Errorf("%w: %s", ErrAlreadyReleased, assignment.ID)
		}
		inc, err := tx.LockIncident(ctx, assignment.IncidentID)
		if err != nil {
			return fmt.Errorf("load incident: %w", err)
		}
		if inc.Status.Terminal() {
			return fmt.Errorf("%w: incident %s is %s", ErrIncidentClosed, inc.ID, inc.Status)
		}
		if err := s.releaseTx(ctx, tx, assignment, now); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		metrics.LedgerOpsTotal.WithLabelValues("release", outcome(err)).Inc()
		return nil, err
	}
	metrics.LedgerOpsTotal.WithLabelValues("release", "ok").Inc()

	s.logger.Info().Str("assignment_id", assignment.ID).Str("resource_id", assignment.ResourceID).Msg("resource released")
	publish(ctx, s.events, s.logger, releasedEvents(assignment.IncidentID, actor, []model.Assignment{*assignment}, now)...)
	return assignment, nil
}

// BulkReleaseForIncident releases every active assignment on the incident on
// behalf of an admin. It is idempotent and ignores the incident's status.
func (s *LedgerService) BulkReleaseForIncident(ctx context.Context, incidentID string, actor model.Actor) ([]model.Assignment, error) {
	if err := requireAdmin(actor, "release resources"); err != nil {
		return nil, err
	}

	now := s.now()
	var released []model.Assignment
	err := s.tx.InTx(ctx, func(tx Tx) error {
		if _, err := tx.LockIncident(ctx, incidentID); err != nil {
			return fmt.Errorf("load incident: %w", err)
		}
		var err error
		released, err = s.releaseAllTx(ctx, tx, incidentID, now)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("bulk release: %w", err)
	}
	publish(ctx, s.events, s.logger, releasedEvents(incidentID, actor, released, now)...)
	return released, nil
}

// ListAssignments returns the incident's assignments, active ones included.
func (s *LedgerService) ListAssignments(ctx context.Context, incidentID string, activeOnly bool) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := s.tx.InTx(ctx, func(tx Tx) error {
		if _, err := tx.GetIncident(ctx, incidentID); err != nil {
			return err
		}
		var err error
		assignments, err = tx.ListAssignments(ctx, incidentID, activeOnly)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// releaseAllTx releases the incident's active assignments inside an open
// transaction. Assignments released concurrently are skipped.
func (s *LedgerService) releaseAllTx(ctx context.Context, tx Tx, incidentID string, now time.Time) ([]model.Assignment, error) {
	active, err := tx.ListAssignments(ctx, incidentID, true)
	if err != nil {
		return nil, fmt.Errorf("list active assignments: %w", err)
	}
	released := make([]model.Assignment, 0, len(active))
	for i := range active {
		a := active[i]
		if err := s.releaseTx(ctx, tx, &a, now); err != nil {
			if errors.Is(err, ErrAlreadyReleased) {
				continue
			}
			return nil, err
		}
		released = append(released, a)
	}
	if len(released) > 0 {
		metrics.LedgerOpsTotal.WithLabelValues("bulk_release", "ok").Add(float64(len(released)))
	}
	return released, nil
}

func (s *LedgerService) releaseTx(ctx context.Context, tx Tx, a *model.Assignment, now time.Time) error {
	if err := tx.ReleaseAssignment(ctx, a.ID, now); err != nil {
		return fmt.Errorf("release assignment %s: %w", a.ID, err)
	}
	if err := tx.SetResourceAvailability(ctx, a.ResourceID, model.AvailabilityAvailable, now); err != nil {
		return fmt.Errorf("free resource %s: %w", a.ResourceID, err)
	}
	a.ReleasedAt = &now
	return nil
}

func releasedEvents(incidentID string, actor model.Actor, released []model.Assignment, now time.Time) []model.Event {
	events := make([]model.Event, 0, len(released))
	for _, a := range released {
		events = append(events, model.Event{
			Type:         model.EventResourceReleased,
			IncidentID:   incidentID,
			ActorID:      actor.ID,
			ActorRole:    actor.Role,
			ResourceID:   a.ResourceID,
			AssignmentID: a.ID,
			OccurredAt:   now,
		})
	}
	return events
}

func requireAdmin(actor model.Actor, what string) error {
	if !actor.Valid() || actor.Role != model.RoleAdmin {
		return fmt.Errorf("%w: only an admin may %s", ErrForbidden, what)
	}
	return nil
}

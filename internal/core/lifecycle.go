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

// LifecycleService owns the incident status state machine and its audit trail.
type LifecycleService struct {
	tx     TxRunner
	ledger *LedgerService
	events EventSink
	logger zerolog.Logger
	now    func() time.Time
}

func NewLifecycleService(tx TxRunner, ledger *LedgerService, events EventSink, logger zerolog.Logger) *LifecycleService {
	return &LifecycleService{
		tx:     tx,
		ledger: ledger,
		events: events,
		logger: logger.With().Str("component", "lifecycle").Logger(),
		now:    time.Now,
	}
}

// ReportIncident holds the reporter-supplied fields of a new incident.
type ReportIncident struct {
	Title       string
	Description string
	Category    string
	Priority    model.Priority
	Latitude    *float64
	Longitude   *float64
	Address     *string
	MediaID     *string
}

// TransitionRequest asks for an incident to move to Target.
type TransitionRequest struct {
	IncidentID string
	Target     model.IncidentStatus
	Actor      model.Actor
	Notes      string
	// TeamID is the team an admin assigns on pending -> in_progress.
	TeamID string
	// MediaID references resolution media attached by the assigned team.
	MediaID *string
	// Expected, when set, is the status the caller last observed. A mismatch
	// is reported as ErrConflict.
	Expected model.IncidentStatus

	// selfAccept restricts the request to a rescue team accepting for itself.
	selfAccept bool
}

// Report creates a pending incident on behalf of a reporter. A reporter may
// have at most one active incident.
func (s *LifecycleService) Report(ctx context.Context, actor model.Actor, in ReportIncident) (*model.Incident, error) {
	if !actor.Valid() || actor.Role != model.RoleReporter {
		return nil, fmt.Errorf("%w: only reporters may report incidents", ErrForbidden)
	}
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" || description == "" {
		return nil, fmt.Errorf("%w: title and description are required", ErrValidation)
	}
	priority := in.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrValidation, priority)
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return nil, fmt.Errorf("%w: latitude and longitude must be given together", ErrValidation)
	}

	now := s.now()
	inc := &model.Incident{
		ID:          platform.NewName(platform.IncidentPrefix),
		Title:       title,
		Description: description,
		Category:    model.NormalizeCategory(in.Category),
		Priority:    priority,
		Status:      model.IncidentPending,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Address:     in.Address,
		ReporterID:  actor.ID,
		MediaID:     in.MediaID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.tx.InTx(ctx, func(tx Tx) error {
		active, err := tx.CountActiveIncidentsForReporter(ctx, actor.ID)
		if err != nil {
			return fmt.Errorf("count reporter incidents: %w", err)
		}
		if active > 0 {
			return fmt.Errorf("%w: reporter %s must wait for the current incident to be resolved", ErrCapacityExceeded, actor.ID)
		}
		if err := tx.InsertIncident(ctx, inc); err != nil {
			return fmt.Errorf("create incident: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("incident_id", inc.ID).Str("reporter", actor.ID).Msg("incident reported")
	publish(ctx, s.events, s.logger, model.Event{
		Type:       model.EventIncidentReported,
		IncidentID: inc.ID,
		Title:      inc.Title,
		Priority:   inc.Priority,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		NewStatus:  inc.Status,
		ReporterID: inc.ReporterID,
		Notes:      inc.Description,
		OccurredAt: now,
	})
	return inc, nil
}

// AcceptIncident lets a rescue team pick up a pending incident for itself.
// The role is checked after the incident is loaded, so a closed incident
// reports ErrIncidentClosed to every caller.
func (s *LifecycleService) AcceptIncident(ctx context.Context, incidentID string, team model.Actor) (*model.Incident, error) {
	return s.RequestTransition(ctx, TransitionRequest{
		IncidentID: incidentID,
		Target:     model.IncidentInProgress,
		Actor:      team,
		Notes:      "Incident accepted by rescue team",
		Expected:   model.IncidentPending,
		selfAccept: true,
	})
}

// RequestTransition validates and applies one lifecycle transition. The status
// write, the audit record and any resource release commit together; events
// are published afterwards.
func (s *LifecycleService) RequestTransition(ctx context.Context, req TransitionRequest) (*model.Incident, error) {
	var (
		result   *model.Incident
		from     model.IncidentStatus
		trig     trigger
		released []model.Assignment
		now      = s.now()
	)

	err := s.tx.InTx(ctx, func(tx Tx) error {
		inc, err := tx.LockIncident(ctx, req.IncidentID)
		if err != nil {
			return fmt.Errorf("load incident: %w", err)
		}
		from = inc.Status

		if inc.Status.Terminal() {
			_, err := resolveTransition(inc, req.Target, req.Actor)
			return err
		}
		if req.Expected != "" && req.Expected != inc.Status {
			return fmt.Errorf("%w: expected %s, found %s", ErrConflict, req.Expected, inc.Status)
		}

		trig, err = resolveTransition(inc, req.Target, req.Actor)
		if err != nil {
			return err
		}
		if req.selfAccept && trig != triggerTeamAccept {
			return fmt.Errorf("%w: only rescue teams may accept incidents", ErrForbidden)
		}

		change := StatusChange{
			IncidentID:     inc.ID,
			From:           inc.Status,
			To:             req.Target,
			AssignedTeamID: inc.AssignedTeamID,
			UpdatedAt:      now,
		}
		notes := strings.TrimSpace(req.Notes)

		switch trig {
		case triggerAdminAssign:
			teamID := strings.TrimSpace(req.TeamID)
			if teamID == "" {
				return fmt.Errorf("%w: team_id is required to assign an incident", ErrValidation)
			}
			busy, err := tx.CountActiveIncidentsForTeam(ctx, teamID)
			if err != nil {
				return fmt.Errorf("count team incidents: %w", err)
			}
			if busy > 0 {
				return fmt.Errorf("%w: team %s", ErrTeamUnavailable, teamID)
			}
			change.AssignedTeamID = &teamID
			if notes == "" {
				notes = "Assigned to rescue team " + teamID
			}
		case triggerTeamAccept:
			if inc.AssignedTeamID != nil {
				return fmt.Errorf("%w: incident already assigned", ErrConflict)
			}
			busy, err := tx.CountActiveIncidentsForTeam(ctx, req.Actor.ID)
			if err != nil {
				return fmt.Errorf("count team incidents: %w", err)
			}
			if busy > 0 {
				return fmt.Errorf("%w: team %s", ErrCapacityExceeded, req.Actor.ID)
			}
			teamID := req.Actor.ID
			change.AssignedTeamID = &teamID
		case triggerTeamResolve, triggerTeamClose:
			change.ResolutionMediaID = req.MediaID
		case triggerAdminReject, triggerReporterWithdraw:
		default:
			return fmt.Errorf("%w: unhandled trigger %s", ErrInvalidTransition, trig)
		}
		if req.MediaID != nil && change.ResolutionMediaID == nil {
			return fmt.Errorf("%w: media can only be attached when resolving or closing", ErrValidation)
		}

		if req.Target == model.IncidentResolved {
			change.ResolvedAt = &now
		}

		if err := tx.UpdateIncidentStatus(ctx, change); err != nil {
			return fmt.Errorf("update incident status: %w", err)
		}

		if err := tx.AppendStatusUpdate(ctx, &model.StatusUpdate{
			ID:         platform.NewID(),
			IncidentID: inc.ID,
			OldStatus:  inc.Status,
			NewStatus:  req.Target,
			Notes:      notes,
			ActorID:    req.Actor.ID,
			CreatedAt:  now,
		}); err != nil {
			return fmt.Errorf("append status update: %w", err)
		}

		if req.Target.ReleasesResources() {
			released, err = s.ledger.releaseAllTx(ctx, tx, inc.ID, now)
			if err != nil {
				return fmt.Errorf("release resources: %w", err)
			}
		}

		inc.Status = req.Target
		inc.AssignedTeamID = change.AssignedTeamID
		inc.ResolvedAt = change.ResolvedAt
		if change.ResolutionMediaID != nil {
			inc.ResolutionMediaID = change.ResolutionMediaID
		}
		inc.UpdatedAt = now
		result = inc
		return nil
	})
	if err != nil {
		metrics.TransitionsTotal.WithLabelValues(string(from), string(req.Target), outcome(err)).Inc()
		return nil, err
	}
	metrics.TransitionsTotal.WithLabelValues(string(from), string(req.Target), "accepted").Inc()

	s.logger.Info().
		Str("incident_id", result.ID).
		Str("from", string(from)).
		Str("to", string(result.Status)).
		Str("actor", req.Actor.ID).
		Str("trigger", trig.String()).
		Int("released", len(released)).
		Msg("incident transitioned")

	events := []model.Event{{
		Type:        model.EventStatusChanged,
		IncidentID:  result.ID,
		Title:       result.Title,
		Priority:    result.Priority,
		ActorID:     req.Actor.ID,
		ActorRole:   req.Actor.Role,
		OldStatus:   from,
		NewStatus:   result.Status,
		ReporterID:  result.ReporterID,
		Notes:       req.Notes,
		NotifyAdmin: trig == triggerReporterWithdraw,
		OccurredAt:  now,
	}}
	if trig == triggerAdminAssign || trig == triggerTeamAccept {
		events = append(events, model.Event{
			Type:       model.EventTeamAssigned,
			IncidentID: result.ID,
			Title:      result.Title,
			Priority:   result.Priority,
			ActorID:    req.Actor.ID,
			ActorRole:  req.Actor.Role,
			NewStatus:  result.Status,
			ReporterID: result.ReporterID,
			TeamID:     *result.AssignedTeamID,
			OccurredAt: now,
		})
	}
	events = append(events, releasedEvents(result.ID, req.Actor, released, now)...)
	publish(ctx, s.events, s.logger, events...)

	return result, nil
}

// Get returns an incident by ID.
func (s *LifecycleService) Get(ctx context.Context, id string) (*model.Incident, error) {
	var inc *model.Incident
	err := s.tx.InTx(ctx, func(tx Tx) error {
		var err error
		inc, err = tx.GetIncident(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get incident: %w", err)
	}
	return inc, nil
}

// List returns incidents matching the filters, newest first.
func (s *LifecycleService) List(ctx context.Context, filters IncidentFilters) ([]model.Incident, error) {
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, filters.Status)
	}
	if filters.Limit <= 0 || filters.Limit > 200 {
		filters.Limit = 50
	}
	var incidents []model.Incident
	err := s.tx.InTx(ctx, func(tx Tx) error {
		var err error
		incidents, err = tx.ListIncidents(ctx, filters)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	return incidents, nil
}

// ListAuditTrail returns the incident's status updates, most recent first.
func (s *LifecycleService) ListAuditTrail(ctx context.Context, incidentID string) ([]model.StatusUpdate, error) {
	var updates []model.StatusUpdate
	err := s.tx.InTx(ctx, func(tx Tx) error {
		if _, err := tx.GetIncident(ctx, incidentID); err != nil {
			return err
		}
		var err error
		updates, err = tx.ListStatusUpdates(ctx, incidentID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list audit trail: %w", err)
	}
	return updates, nil
}

// Delete removes an incident together with its audit trail and assignments.
// Active assignments are released first so their resources become available.
func (s *LifecycleService) Delete(ctx context.Context, actor model.Actor, incidentID string) error {
	if err := requireAdmin(actor, "delete incidents"); err != nil {
		return err
	}
	now := s.now()
	var released []model.Assignment
	err := s.tx.InTx(ctx, func(tx Tx) error {
		if _, err := tx.LockIncident(ctx, incidentID); err != nil {
			return fmt.Errorf("load incident: %w", err)
		}
		var err error
		released, err = s.ledger.releaseAllTx(ctx, tx, incidentID, now)
		if err != nil {
			return fmt.Errorf("release resources: %w", err)
		}
		if err := tx.DeleteIncident(ctx, incidentID); err != nil {
			return fmt.Errorf("delete incident: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("incident_id", incidentID).Str("actor", actor.ID).Msg("incident deleted")
	events := releasedEvents(incidentID, actor, released, now)
	events = append(events, model.Event{
		Type:       model.EventIncidentDeleted,
		IncidentID: incidentID,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		OccurredAt: now,
	})
	publish(ctx, s.events, s.logger, events...)
	return nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid"
	case errors.Is(err, ErrIncidentClosed):
		return "closed"
	case errors.Is(err, ErrCapacityExceeded), errors.Is(err, ErrTeamUnavailable):
		return "capacity"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrResourceUnavailable), errors.Is(err, ErrAlreadyAssigned), errors.Is(err, ErrAlreadyReleased):
		return "rejected"
	case errors.Is(err, ErrValidation):
		return "invalid_request"
	default:
		return "error"
	}
}

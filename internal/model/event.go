package model

import "time"

// Event types emitted after a committed change.
const (
	EventIncidentReported = "incident.reported"
	EventStatusChanged    = "incident.status_changed"
	EventTeamAssigned     = "incident.team_assigned"
	EventIncidentDeleted  = "incident.deleted"
	EventResourceAssigned = "resource.assigned"
	EventResourceReleased = "resource.released"
)

// Event is a fact handed to the notification collaborator. Delivery is best effort.
type Event struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	IncidentID   string         `json:"incident_id"`
	Title        string         `json:"title,omitempty"`
	Priority     Priority       `json:"priority,omitempty"`
	ActorID      string         `json:"actor_id"`
	ActorRole    Role           `json:"actor_role"`
	OldStatus    IncidentStatus `json:"old_status,omitempty"`
	NewStatus    IncidentStatus `json:"new_status,omitempty"`
	ReporterID   string         `json:"reporter_id,omitempty"`
	TeamID       string         `json:"team_id,omitempty"`
	ResourceID   string         `json:"resource_id,omitempty"`
	AssignmentID string         `json:"assignment_id,omitempty"`
	Notes        string         `json:"notes,omitempty"`
	NotifyAdmin  bool           `json:"notify_admin,omitempty"`
	OccurredAt   time.Time      `json:"occurred_at"`
}

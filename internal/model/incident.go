package model

import (
	"strings"
	"time"
)

// IncidentStatus is the position of an incident in its lifecycle.
type IncidentStatus string

// Incident statuses.
const (
	IncidentPending    IncidentStatus = "pending"
	IncidentInProgress IncidentStatus = "in_progress"
	IncidentResolved   IncidentStatus = "resolved"
	IncidentClosed     IncidentStatus = "closed"
	IncidentRejected   IncidentStatus = "rejected"
)

// IncidentStatuses lists every status in lifecycle order.
var IncidentStatuses = []IncidentStatus{
	IncidentPending,
	IncidentInProgress,
	IncidentResolved,
	IncidentClosed,
	IncidentRejected,
}

// Valid reports whether s is one of the five lifecycle statuses.
func (s IncidentStatus) Valid() bool {
	switch s {
	case IncidentPending, IncidentInProgress, IncidentResolved, IncidentClosed, IncidentRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are accepted from s.
func (s IncidentStatus) Terminal() bool {
	return s == IncidentClosed || s == IncidentRejected
}

// Active reports whether s counts against team and reporter capacity.
func (s IncidentStatus) Active() bool {
	return s == IncidentPending || s == IncidentInProgress
}

// ReleasesResources reports whether entering s frees all assigned resources.
func (s IncidentStatus) ReleasesResources() bool {
	return s == IncidentResolved || s == IncidentClosed || s == IncidentRejected
}

// Category classifies what kind of crisis an incident is.
type Category string

// Incident categories.
const (
	CategoryFire            Category = "fire"
	CategoryMedical         Category = "medical"
	CategoryAccident        Category = "accident"
	CategoryNaturalDisaster Category = "natural_disaster"
	CategoryCrime           Category = "crime"
	CategoryUtility         Category = "utility"
	CategoryOther           Category = "other"
)

// NormalizeCategory maps free-form input onto a known category, falling back to other.
func NormalizeCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CategoryFire, CategoryMedical, CategoryAccident, CategoryNaturalDisaster,
		CategoryCrime, CategoryUtility, CategoryOther:
		return c
	}
	return CategoryOther
}

// Priority is the reported severity of an incident.
type Priority string

// Incident priorities.
const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

type Incident struct {
	ID                string         `json:"id" db:"id"`
	Title             string         `json:"title" db:"title"`
	Description       string         `json:"description" db:"description"`
	Category          Category       `json:"category" db:"category"`
	Priority          Priority       `json:"priority" db:"priority"`
	Status            IncidentStatus `json:"status" db:"status"`
	Latitude          *float64       `json:"latitude,omitempty" db:"latitude"`
	Longitude         *float64       `json:"longitude,omitempty" db:"longitude"`
	Address           *string        `json:"address,omitempty" db:"address"`
	ReporterID        string         `json:"reporter_id" db:"reporter_id"`
	AssignedTeamID    *string        `json:"assigned_team_id,omitempty" db:"assigned_team_id"`
	MediaID           *string        `json:"media_id,omitempty" db:"media_id"`
	ResolutionMediaID *string        `json:"resolution_media_id,omitempty" db:"resolution_media_id"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at" db:"updated_at"`
	ResolvedAt        *time.Time     `json:"resolved_at,omitempty" db:"resolved_at"`
}

// AssignedTo reports whether teamID is the team currently assigned to the incident.
func (i *Incident) AssignedTo(teamID string) bool {
	return i.AssignedTeamID != nil && *i.AssignedTeamID == teamID
}

// StatusUpdate is one entry in an incident's audit trail. Resource assignment
// notes are recorded with OldStatus == NewStatus.
type StatusUpdate struct {
	ID         string         `json:"id" db:"id"`
	IncidentID string         `json:"incident_id" db:"incident_id"`
	OldStatus  IncidentStatus `json:"old_status" db:"old_status"`
	NewStatus  IncidentStatus `json:"new_status" db:"new_status"`
	Notes      string         `json:"notes" db:"notes"`
	ActorID    string         `json:"actor_id" db:"actor_id"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

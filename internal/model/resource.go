package model

import "time"

// Availability is the allocation state of a physical resource.
type Availability string

// Resource availability states.
const (
	AvailabilityAvailable   Availability = "available"
	AvailabilityInUse       Availability = "in_use"
	AvailabilityMaintenance Availability = "maintenance"
	AvailabilityUnavailable Availability = "unavailable"
)

func (a Availability) Valid() bool {
	switch a {
	case AvailabilityAvailable, AvailabilityInUse, AvailabilityMaintenance, AvailabilityUnavailable:
		return true
	}
	return false
}

// Resource categories.
const (
	ResourceVehicle   = "vehicle"
	ResourceEquipment = "equipment"
	ResourcePersonnel = "personnel"
)

type Resource struct {
	ID           string       `json:"id" db:"id"`
	Name         string       `json:"name" db:"name"`
	Category     string       `json:"category" db:"category"`
	Description  string       `json:"description" db:"description"`
	Availability Availability `json:"availability" db:"availability"`
	Location     string       `json:"location" db:"location"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// Assignment links a resource to an incident for a bounded period.
type Assignment struct {
	ID         string     `json:"id" db:"id"`
	IncidentID string     `json:"incident_id" db:"incident_id"`
	ResourceID string     `json:"resource_id" db:"resource_id"`
	Notes      string     `json:"notes" db:"notes"`
	AssignedAt time.Time  `json:"assigned_at" db:"assigned_at"`
	ReleasedAt *time.Time `json:"released_at,omitempty" db:"released_at"`
}

// Active reports whether the assignment has not been released yet.
func (a *Assignment) Active() bool {
	return a.ReleasedAt == nil
}

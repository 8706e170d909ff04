package model

// Role is the kind of actor invoking an operation.
type Role string

// Actor roles.
const (
	RoleReporter   Role = "reporter"
	RoleRescueTeam Role = "rescue_team"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleReporter, RoleRescueTeam, RoleAdmin:
		return true
	}
	return false
}

// Actor is the identity and role supplied by the authentication layer.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

func (a Actor) Valid() bool {
	return a.ID != "" && a.Role.Valid()
}

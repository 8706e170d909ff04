package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIncidentStatus_Valid(t *testing.T) {
	for _, s := range IncidentStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, IncidentStatus("open").Valid())
	assert.False(t, IncidentStatus("").Valid())
}

func TestIncidentStatus_Predicates(t *testing.T) {
	tests := []struct {
		status   IncidentStatus
		terminal bool
		active   bool
		releases bool
	}{
		{IncidentPending, false, true, false},
		{IncidentInProgress, false, true, false},
		{IncidentResolved, false, false, true},
		{IncidentClosed, true, false, true},
		{IncidentRejected, true, false, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.status.Terminal())
			assert.Equal(t, tt.active, tt.status.Active())
			assert.Equal(t, tt.releases, tt.status.ReleasesResources())
		})
	}
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, CategoryFire, NormalizeCategory("fire"))
	assert.Equal(t, CategoryNaturalDisaster, NormalizeCategory(" Natural_Disaster "))
	assert.Equal(t, CategoryOther, NormalizeCategory("alien invasion"))
	assert.Equal(t, CategoryOther, NormalizeCategory(""))
}

func TestIncident_AssignedTo(t *testing.T) {
	team := "team-1"
	inc := &Incident{}
	assert.False(t, inc.AssignedTo("team-1"))

	inc.AssignedTeamID = &team
	assert.True(t, inc.AssignedTo("team-1"))
	assert.False(t, inc.AssignedTo("team-2"))
}

func TestActor_Valid(t *testing.T) {
	assert.True(t, Actor{ID: "u1", Role: RoleAdmin}.Valid())
	assert.False(t, Actor{ID: "", Role: RoleAdmin}.Valid())
	assert.False(t, Actor{ID: "u1", Role: "superuser"}.Valid())
}

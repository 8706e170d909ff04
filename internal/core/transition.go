package core

import (
	"fmt"

	"github.com/edvin/crisisdesk/internal/model"
)

// trigger names the authorized rule that admits a transition. The admin and
// self-accept triggers share the pending -> in_progress edge but apply
// different capacity checks.
type trigger int

const (
	triggerNone trigger = iota
	triggerAdminReject
	triggerAdminAssign
	triggerTeamAccept
	triggerReporterWithdraw
	triggerTeamResolve
	triggerTeamClose
)

func (t trigger) String() string {
	switch t {
	case triggerAdminReject:
		return "admin_reject"
	case triggerAdminAssign:
		return "admin_assign"
	case triggerTeamAccept:
		return "team_accept"
	case triggerReporterWithdraw:
		return "reporter_withdraw"
	case triggerTeamResolve:
		return "team_resolve"
	case triggerTeamClose:
		return "team_close"
	default:
		return "none"
	}
}

// resolveTransition checks the requested move of inc to target by actor
// against the transition table. Terminal incidents are rejected before any
// edge or role check so the error does not depend on who asks.
func resolveTransition(inc *model.Incident, target model.IncidentStatus, actor model.Actor) (trigger, error) {
	if inc.Status.Terminal() {
		return triggerNone, fmt.Errorf("%w: incident %s is %s", ErrIncidentClosed, inc.ID, inc.Status)
	}
	if !target.Valid() {
		return triggerNone, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, target)
	}
	if !actor.Valid() {
		return triggerNone, fmt.Errorf("%w: unknown actor", ErrForbidden)
	}

	forbidden := func(reason string) (trigger, error) {
		return triggerNone, fmt.Errorf("%w: %s cannot move %s -> %s: %s", ErrForbidden, actor.Role, inc.Status, target, reason)
	}

	switch inc.Status {
	case model.IncidentPending:
		switch target {
		case model.IncidentRejected:
			if actor.Role == model.RoleAdmin {
				return triggerAdminReject, nil
			}
			return forbidden("only an admin may reject")
		case model.IncidentInProgress:
			switch actor.Role {
			case model.RoleAdmin:
				return triggerAdminAssign, nil
			case model.RoleRescueTeam:
				return triggerTeamAccept, nil
			default:
				return forbidden("only an admin or a rescue team may start work")
			}
		case model.IncidentClosed:
			if actor.Role == model.RoleReporter && actor.ID == inc.ReporterID {
				return triggerReporterWithdraw, nil
			}
			return forbidden("only the reporter may withdraw")
		}
	case model.IncidentInProgress:
		switch target {
		case model.IncidentResolved:
			if actor.Role == model.RoleRescueTeam && inc.AssignedTo(actor.ID) {
				return triggerTeamResolve, nil
			}
			return forbidden("only the assigned team may resolve")
		case model.IncidentClosed:
			if actor.Role == model.RoleReporter {
				return forbidden("withdrawal is only possible while pending")
			}
		}
	case model.IncidentResolved:
		switch target {
		case model.IncidentClosed:
			if actor.Role == model.RoleRescueTeam && inc.AssignedTo(actor.ID) {
				return triggerTeamClose, nil
			}
			return forbidden("only the assigned team may close")
		}
	}

	return triggerNone, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, inc.Status, target)
}

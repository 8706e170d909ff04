package core

import "errors"

// Lifecycle and ledger failures. Only ErrConflict is worth retrying; every
// other error is final for the request that produced it.
var (
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("incident changed concurrently, reload and retry")
	ErrCapacityExceeded    = errors.New("actor already has an active incident")
	ErrTeamUnavailable     = errors.New("team already has an active incident")
	ErrResourceUnavailable = errors.New("resource unavailable")
	ErrAlreadyAssigned     = errors.New("resource already assigned to incident")
	ErrAlreadyReleased     = errors.New("assignment already released")
	ErrIncidentClosed      = errors.New("incident is closed")
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation failed")
)

// IsRetryable reports whether the caller should reload and retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}

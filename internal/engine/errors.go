// Package engine implements the job scheduling and resource-assignment
// core: admission with per-account exclusivity, the job state machine,
// resource selection, and cascading destruction of accounts and VPS hosts.
package engine

import (
	"database/sql"
	"errors"
	"fmt"

	"swipefleet/internal/store"

	"github.com/google/uuid"
)

// ErrNotFound signals that a queried entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrNoResourceAvailable signals that admission could not bind a VPS.
// Callers may retry after provisioning a resource.
var ErrNoResourceAvailable = errors.New("no execution resource available")

// AlreadyRunningError is returned when admission would violate the
// one-non-terminal-job-per-account invariant. It carries the conflicting
// job IDs so the caller can decide whether to wait or force-cancel.
type AlreadyRunningError struct {
	AccountID uuid.UUID
	JobIDs    []uuid.UUID
}

func (e *AlreadyRunningError) Error() string {
	return fmt.Sprintf("account %s already has %d non-terminal job(s): %v", e.AccountID, len(e.JobIDs), e.JobIDs)
}

// InvalidTransitionError is returned when a state-machine move is not
// permitted from the job's current state. It indicates a caller bug and
// is never retried by the core.
type InvalidTransitionError struct {
	JobID uuid.UUID
	From  store.JobStatus
	Event EventKind
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("job %s: event %q not permitted from state %q", e.JobID, e.Event, e.From)
}

// CascadeError is returned when a cascading deletion could not cancel
// every dependent job. The parent entity is left in place; Remaining
// names the jobs still non-terminal.
type CascadeError struct {
	Remaining []uuid.UUID
	Cause     error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("cascade aborted, %d job(s) remain non-terminal: %v: %v", len(e.Remaining), e.Remaining, e.Cause)
}

func (e *CascadeError) Unwrap() error {
	return e.Cause
}

// mapNotFound translates the store's row-absence error into the engine's
// typed taxonomy; other errors pass through.
func mapNotFound(err error, what string, id fmt.Stringer) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return err
}

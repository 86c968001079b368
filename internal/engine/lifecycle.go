package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"swipefleet/internal/logger"
	"swipefleet/internal/store"

	"github.com/google/uuid"
)

// EventKind identifies a job state-machine event.
type EventKind string

const (
	EventStart    EventKind = "start"
	EventComplete EventKind = "complete"
	EventFail     EventKind = "fail"
	EventCancel   EventKind = "cancel"
)

// Event is one execution-feedback input to the job state machine.
type Event struct {
	Kind   EventKind
	Swipes int    // complete: swipes performed, accumulated into the account counter
	Reason string // fail: human-readable cause

	// AccountStatus optionally carries the account-health effect of a
	// terminal outcome, e.g. a status-check run discovering a ban.
	AccountStatus store.AccountStatus
}

// Start moves a pending or queued job to running.
func Start() Event { return Event{Kind: EventStart} }

// Complete finishes a running job and reports its swipe count.
func Complete(swipes int) Event { return Event{Kind: EventComplete, Swipes: swipes} }

// Fail finishes a running job with a cause. status may name the account
// state the failure revealed; pass "" for no status effect.
func Fail(reason string, status store.AccountStatus) Event {
	return Event{Kind: EventFail, Reason: reason, AccountStatus: status}
}

// Cancel marks a non-terminal job cancelled. A no-op on terminal jobs.
func Cancel() Event { return Event{Kind: EventCancel} }

// Lifecycle creates, transitions, and cancels swipe jobs. It is the only
// job-creation path in the system.
type Lifecycle struct {
	store    store.Store
	registry *Registry
	ledger   *Ledger
	locks    *keyedMutex
	logger   *slog.Logger
}

// Admit creates a new pending job for the account, enforcing the
// exclusivity invariant: zero jobs in {pending, queued, running}. The
// check-then-create sequence runs under the account's critical section
// (in-process keyed lock) plus a per-account advisory lock inside the
// transaction, so two concurrent admissions can never both succeed.
func (lc *Lifecycle) Admit(ctx context.Context, account *store.Account, jobType store.JobType, createdBy store.CreatedBy, resourceHint *uuid.UUID) (*store.SwipeJob, error) {
	unlock := lc.locks.Lock(account.ID)
	defer unlock()

	tx, err := lc.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lc.store.LockAccount(ctx, tx, account.ID); err != nil {
		return nil, fmt.Errorf("failed to lock account %s: %w", account.ID, err)
	}

	// The caller's snapshot predates the critical section; a racing
	// destroy or status change may have committed since. Destroys commit
	// before releasing the account lock, so this read is consistent.
	accountID := account.ID
	account, err = lc.store.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, mapNotFound(err, "account", accountID)
	}
	if !account.Status.Alive() {
		return nil, fmt.Errorf("account %s: %w", accountID, ErrNotFound)
	}

	inflight, err := lc.store.ListJobsByAccount(ctx, tx, account.ID, store.NonTerminalJobStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to check in-flight jobs: %w", err)
	}
	if len(inflight) > 0 {
		ids := make([]uuid.UUID, len(inflight))
		for i, j := range inflight {
			ids[i] = j.ID
		}
		return nil, &AlreadyRunningError{AccountID: account.ID, JobIDs: ids}
	}

	vps, err := lc.selectResource(ctx, account, jobType, resourceHint)
	if err != nil {
		return nil, err
	}

	job := &store.SwipeJob{
		ID:        uuid.New(),
		AccountID: account.ID,
		VPSID:     &vps.ID,
		Status:    store.JobStatusPending,
		Type:      jobType,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}

	if err := lc.store.CreateJob(ctx, tx, job); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit admission: %w", err)
	}

	logger.FromContext(ctx, lc.logger).Info("job admitted",
		"job_id", job.ID, "account_id", account.ID,
		"job_type", jobType, "created_by", createdBy, "vps_id", vps.ID)
	return job, nil
}

// selectResource applies the hint when it names an existing VPS, else
// defers to the registry's schedule/fallback selection.
func (lc *Lifecycle) selectResource(ctx context.Context, account *store.Account, jobType store.JobType, hint *uuid.UUID) (*store.VPS, error) {
	if hint != nil {
		vps, err := lc.store.GetResourceByID(ctx, *hint)
		if err == nil {
			return vps, nil
		}
		lc.logger.Warn("resource hint not eligible, falling back", "hint", *hint, "account_id", account.ID)
	}
	return lc.registry.ResourceFor(ctx, account, jobType)
}

// Transition applies one event to the job state machine. Moves are
// monotonic; events not permitted from the current state fail with
// InvalidTransitionError. Cancel on an already-terminal job is an
// idempotent no-op.
func (lc *Lifecycle) Transition(ctx context.Context, jobID uuid.UUID, event Event) (*store.SwipeJob, error) {
	job, err := lc.store.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, mapNotFound(err, "job", jobID)
	}

	unlock := lc.locks.Lock(job.AccountID)
	defer unlock()

	// Re-read under the lock; a concurrent transition may have moved it.
	job, err = lc.store.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, mapNotFound(err, "job", jobID)
	}

	var next store.JobStatus
	switch event.Kind {
	case EventStart:
		next = store.JobStatusRunning
	case EventComplete:
		next = store.JobStatusCompleted
	case EventFail:
		next = store.JobStatusFailed
	case EventCancel:
		if job.Status.IsTerminal() {
			return job, nil
		}
		next = store.JobStatusCancelled
	default:
		return nil, &InvalidTransitionError{JobID: job.ID, From: job.Status, Event: event.Kind}
	}

	if !job.Status.CanTransitionTo(next) {
		return nil, &InvalidTransitionError{JobID: job.ID, From: job.Status, Event: event.Kind}
	}

	tx, err := lc.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lc.store.LockAccount(ctx, tx, job.AccountID); err != nil {
		return nil, fmt.Errorf("failed to lock account %s: %w", job.AccountID, err)
	}

	var errMsg *string
	swipes := job.Swipes
	switch event.Kind {
	case EventComplete:
		swipes = event.Swipes
	case EventFail:
		if event.Reason != "" {
			reason := event.Reason
			errMsg = &reason
		}
	}

	if err := lc.store.UpdateJobStatus(ctx, tx, job.ID, next, swipes, errMsg); err != nil {
		return nil, fmt.Errorf("failed to update job %s: %w", job.ID, err)
	}

	// Terminal outcomes feed back into the owning account.
	if event.Kind == EventComplete && event.Swipes > 0 {
		if err := lc.store.AddSwipes(ctx, tx, job.AccountID, event.Swipes); err != nil {
			return nil, fmt.Errorf("failed to accumulate swipes: %w", err)
		}
	}
	if (event.Kind == EventComplete || event.Kind == EventFail) && event.AccountStatus != "" {
		if !event.AccountStatus.Valid() {
			return nil, fmt.Errorf("invalid account status %q in job outcome", event.AccountStatus)
		}
		if err := lc.applyOutcomeStatus(ctx, tx, job.AccountID, event.AccountStatus); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transition: %w", err)
	}

	job.Status = next
	job.Swipes = swipes
	job.ErrorMessage = errMsg

	logger.FromContext(ctx, lc.logger).Info("job transitioned", "job_id", job.ID, "event", event.Kind, "status", next)
	return job, nil
}

// applyOutcomeStatus updates the account status and appends the ledger
// record inside the caller's transaction. The caller already holds the
// account's critical section.
func (lc *Lifecycle) applyOutcomeStatus(ctx context.Context, tx store.DBTransaction, accountID uuid.UUID, newStatus store.AccountStatus) error {
	account, err := lc.store.GetAccountByID(ctx, accountID)
	if err != nil {
		return mapNotFound(err, "account", accountID)
	}
	if account.Status == newStatus {
		return nil
	}

	if err := lc.store.UpdateAccountStatus(ctx, tx, accountID, newStatus); err != nil {
		return fmt.Errorf("failed to update account status: %w", err)
	}
	return lc.ledger.Append(ctx, tx, accountID, account.Status, newStatus)
}

// CancelAllForAccount cancels the account's non-terminal jobs within the
// caller's transaction and returns the cancelled IDs. Zero matching jobs
// is a no-op, not an error.
func (lc *Lifecycle) CancelAllForAccount(ctx context.Context, tx store.DBTransaction, accountID uuid.UUID) ([]uuid.UUID, error) {
	jobs, err := lc.store.ListJobsByAccount(ctx, tx, accountID, store.NonTerminalJobStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs for account %s: %w", accountID, err)
	}
	return lc.cancelAll(ctx, tx, jobs)
}

// CancelAllForResource cancels the non-terminal jobs bound to a VPS within
// the caller's transaction.
func (lc *Lifecycle) CancelAllForResource(ctx context.Context, tx store.DBTransaction, vpsID uuid.UUID) ([]uuid.UUID, error) {
	jobs, err := lc.store.ListJobsByResource(ctx, tx, vpsID, store.NonTerminalJobStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs for vps %s: %w", vpsID, err)
	}
	return lc.cancelAll(ctx, tx, jobs)
}

func (lc *Lifecycle) cancelAll(ctx context.Context, tx store.DBTransaction, jobs []store.SwipeJob) ([]uuid.UUID, error) {
	cancelled := make([]uuid.UUID, 0, len(jobs))
	for i, job := range jobs {
		if err := lc.store.UpdateJobStatus(ctx, tx, job.ID, store.JobStatusCancelled, job.Swipes, job.ErrorMessage); err != nil {
			remaining := make([]uuid.UUID, 0, len(jobs)-i)
			for _, j := range jobs[i:] {
				remaining = append(remaining, j.ID)
			}
			return nil, &CascadeError{Remaining: remaining, Cause: err}
		}
		cancelled = append(cancelled, job.ID)
	}
	return cancelled, nil
}

package engine

import (
	"context"
	"fmt"
	"log/slog"

	"swipefleet/internal/logger"
	"swipefleet/internal/store"

	"github.com/google/uuid"
)

// Coordinator is the top-level façade over the scheduling core. It owns
// account status, enforces account-level invariants, and drives cascading
// cancellation through the job lifecycle.
type Coordinator struct {
	store     store.Store
	lifecycle *Lifecycle
	registry  *Registry
	ledger    *Ledger
	locks     *keyedMutex
	logger    *slog.Logger
}

// NewCoordinator wires up the engine: one shared per-account lock set, the
// ledger, the resource registry, and the job lifecycle.
func NewCoordinator(st store.Store, logger *slog.Logger) *Coordinator {
	locks := newKeyedMutex()
	ledger := NewLedger(st)
	registry := NewRegistry(st, logger)
	lifecycle := &Lifecycle{
		store:    st,
		registry: registry,
		ledger:   ledger,
		locks:    locks,
		logger:   logger,
	}
	registry.lifecycle = lifecycle

	return &Coordinator{
		store:     st,
		lifecycle: lifecycle,
		registry:  registry,
		ledger:    ledger,
		locks:     locks,
		logger:    logger,
	}
}

// Lifecycle exposes the job lifecycle manager.
func (c *Coordinator) Lifecycle() *Lifecycle { return c.lifecycle }

// Registry exposes the resource registry.
func (c *Coordinator) Registry() *Registry { return c.registry }

// Ledger exposes the status transition log.
func (c *Coordinator) Ledger() *Ledger { return c.ledger }

// SetStatus validates and applies a new account status. A no-op when the
// status is unchanged; otherwise the account row update and the ledger
// append commit atomically, serialized through the same per-account
// critical section as job admission.
func (c *Coordinator) SetStatus(ctx context.Context, accountID uuid.UUID, newStatus store.AccountStatus) (*store.Account, error) {
	if !newStatus.Valid() {
		return nil, fmt.Errorf("invalid account status %q", newStatus)
	}

	unlock := c.locks.Lock(accountID)
	defer unlock()

	account, err := c.store.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, mapNotFound(err, "account", accountID)
	}

	if account.Status == newStatus {
		return account, nil
	}

	tx, err := c.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := c.store.LockAccount(ctx, tx, accountID); err != nil {
		return nil, fmt.Errorf("failed to lock account %s: %w", accountID, err)
	}

	if err := c.store.UpdateAccountStatus(ctx, tx, accountID, newStatus); err != nil {
		return nil, fmt.Errorf("failed to update account status: %w", err)
	}
	if err := c.ledger.Append(ctx, tx, accountID, account.Status, newStatus); err != nil {
		return nil, fmt.Errorf("failed to append status transition: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit status change: %w", err)
	}

	logger.FromContext(ctx, c.logger).Info("account status changed",
		"account_id", accountID, "before", account.Status, "after", newStatus)

	account.Status = newStatus
	return account, nil
}

// PreviousNonTransientStatus returns the status the account held before
// its most recent transition, skipping the transient vps_error status.
// Fails with ErrNotFound if no qualifying ledger record exists.
func (c *Coordinator) PreviousNonTransientStatus(ctx context.Context, accountID uuid.UUID) (store.AccountStatus, error) {
	if _, err := c.store.GetAccountByID(ctx, accountID); err != nil {
		return "", mapNotFound(err, "account", accountID)
	}
	return c.ledger.PreviousExcluding(ctx, accountID, store.AccountStatusVPSError)
}

// RequestJob is the exclusivity-checked job admission entry point. Fails
// with AlreadyRunningError when the account has a non-terminal job, and
// with ErrNoResourceAvailable when no VPS can be bound.
func (c *Coordinator) RequestJob(ctx context.Context, accountID uuid.UUID, jobType store.JobType, createdBy store.CreatedBy) (*store.SwipeJob, error) {
	account, err := c.admittableAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return c.lifecycle.Admit(ctx, account, jobType, createdBy, nil)
}

// RequestJobOn admits like RequestJob but prefers the named VPS. A hint
// that names no existing VPS falls back to schedule selection.
func (c *Coordinator) RequestJobOn(ctx context.Context, accountID uuid.UUID, jobType store.JobType, createdBy store.CreatedBy, vpsID uuid.UUID) (*store.SwipeJob, error) {
	account, err := c.admittableAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return c.lifecycle.Admit(ctx, account, jobType, createdBy, &vpsID)
}

func (c *Coordinator) admittableAccount(ctx context.Context, accountID uuid.UUID) (*store.Account, error) {
	account, err := c.store.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, mapNotFound(err, "account", accountID)
	}
	if !account.Status.Alive() {
		return nil, fmt.Errorf("account %s: %w", accountID, ErrNotFound)
	}
	return account, nil
}

// DestroyAccount cancels every non-terminal job owned by the account, then
// removes the account with its jobs and its status ledger, all in one
// transaction. A partial cascade failure aborts the whole deletion.
func (c *Coordinator) DestroyAccount(ctx context.Context, accountID uuid.UUID) error {
	unlock := c.locks.Lock(accountID)
	defer unlock()

	if _, err := c.store.GetAccountByID(ctx, accountID); err != nil {
		return mapNotFound(err, "account", accountID)
	}

	tx, err := c.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := c.store.LockAccount(ctx, tx, accountID); err != nil {
		return fmt.Errorf("failed to lock account %s: %w", accountID, err)
	}

	cancelled, err := c.lifecycle.CancelAllForAccount(ctx, tx, accountID)
	if err != nil {
		return err
	}

	if err := c.ledger.Purge(ctx, tx, accountID); err != nil {
		return fmt.Errorf("failed to purge status ledger: %w", err)
	}
	if err := c.store.DeleteJobsForAccount(ctx, tx, accountID); err != nil {
		return fmt.Errorf("failed to delete jobs: %w", err)
	}
	if err := c.store.DeleteAccount(ctx, tx, accountID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit account destruction: %w", err)
	}

	logger.FromContext(ctx, c.logger).Info("account destroyed", "account_id", accountID, "cancelled_jobs", cancelled)
	return nil
}

// TransitionJob applies an executor outcome to a job.
func (c *Coordinator) TransitionJob(ctx context.Context, jobID uuid.UUID, event Event) (*store.SwipeJob, error) {
	return c.lifecycle.Transition(ctx, jobID, event)
}

// DestroyResource removes a VPS after cancelling every job bound to it.
func (c *Coordinator) DestroyResource(ctx context.Context, vpsID uuid.UUID) error {
	return c.registry.DestroyResource(ctx, vpsID)
}

// StatusHistory returns the account's status ledger, newest first.
func (c *Coordinator) StatusHistory(ctx context.Context, accountID uuid.UUID) ([]store.StatusTransition, error) {
	if _, err := c.store.GetAccountByID(ctx, accountID); err != nil {
		return nil, mapNotFound(err, "account", accountID)
	}
	return c.ledger.History(ctx, accountID)
}

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"swipefleet/internal/engine"
	"swipefleet/internal/store"
)

// Config holds scheduler configuration.
type Config struct {
	PollInterval time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{PollInterval: 30 * time.Second}
}

// Loop drives the fleet on a polling cadence: each tick selects the
// accounts that should be swiping and admits a system job for each.
type Loop struct {
	store       store.Store
	coordinator *engine.Coordinator
	config      Config
	logger      *slog.Logger
	stopCh      chan struct{}
	doneCh      chan struct{}
}

// NewLoop creates a new scheduler loop.
func NewLoop(st store.Store, c *engine.Coordinator, cfg Config, logger *slog.Logger) *Loop {
	return &Loop{
		store:       st,
		coordinator: c,
		config:      cfg,
		logger:      logger.With("component", "scheduler"),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start begins the scheduling loop. Blocks until ctx is cancelled or Stop is called.
func (l *Loop) Start(ctx context.Context) error {
	l.logger.Info("scheduler started", "poll_interval", l.config.PollInterval)
	ticker := time.NewTicker(l.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("scheduler stopping (context cancelled)")
			close(l.doneCh)
			return ctx.Err()
		case <-l.stopCh:
			l.logger.Info("scheduler stopping (stop called)")
			close(l.doneCh)
			return nil
		case <-ticker.C:
			if err := l.Tick(ctx); err != nil {
				l.logger.Error("tick error", "error", err)
			}
		}
	}
}

// Stop gracefully shuts down the scheduler and waits for the current tick to finish.
func (l *Loop) Stop() error {
	close(l.stopCh)
	<-l.doneCh
	return nil
}

// Tick runs a single scheduling iteration.
func (l *Loop) Tick(ctx context.Context) error {
	accounts, err := l.store.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}

	// Phase 1: swipe runs for accounts in good standing.
	l.admitSwipes(ctx, accounts)

	// Phase 2: status probes for accounts whose last run hit a resource fault.
	l.admitStatusChecks(ctx, accounts)

	return nil
}

// SwipeCandidates filters and orders the accounts a tick will admit swipe
// runs for: swipeable, bound to a schedule, behind a healthy proxy, not
// warming up. Gold accounts go first.
func SwipeCandidates(accounts []store.Account) []store.Account {
	eligible := store.FilterAccounts(accounts, store.And(
		store.Alive,
		store.InClass(store.ClassSwipeable),
		store.HasSchedule,
		store.ProxyHealthy,
		store.Not(store.WarmingUp),
	))
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Gold && !eligible[j].Gold
	})
	return eligible
}

// ProbeCandidates filters the accounts a tick will admit status checks
// for: alive but parked in a transient fault state.
func ProbeCandidates(accounts []store.Account) []store.Account {
	return store.FilterAccounts(accounts, store.And(
		store.Alive,
		store.InClass(store.ClassTransient),
	))
}

func (l *Loop) admitSwipes(ctx context.Context, accounts []store.Account) {
	for _, account := range SwipeCandidates(accounts) {
		job, err := l.coordinator.RequestJob(ctx, account.ID, store.JobTypeSwipe, store.CreatedBySystem)
		if l.skip(account, err) {
			continue
		}
		l.logger.Info("swipe run admitted", "account_id", account.ID, "job_id", job.ID, "gold", account.Gold)
	}
}

func (l *Loop) admitStatusChecks(ctx context.Context, accounts []store.Account) {
	for _, account := range ProbeCandidates(accounts) {
		job, err := l.coordinator.RequestJob(ctx, account.ID, store.JobTypeStatusCheck, store.CreatedBySystem)
		if l.skip(account, err) {
			continue
		}
		l.logger.Info("status probe admitted", "account_id", account.ID, "job_id", job.ID)
	}
}

// skip classifies admission errors. A busy account is normal operation,
// a fleet without capacity is worth a log line, anything else is an error.
func (l *Loop) skip(account store.Account, err error) bool {
	if err == nil {
		return false
	}
	var conflict *engine.AlreadyRunningError
	switch {
	case errors.As(err, &conflict):
		l.logger.Debug("account busy", "account_id", account.ID, "blocking_jobs", conflict.JobIDs)
	case errors.Is(err, engine.ErrNoResourceAvailable):
		l.logger.Warn("no vps available", "account_id", account.ID)
	case errors.Is(err, engine.ErrNotFound):
		// Account deleted between listing and admission.
		l.logger.Debug("account gone", "account_id", account.ID)
	default:
		l.logger.Error("admission failed", "account_id", account.ID, "error", err)
	}
	return true
}

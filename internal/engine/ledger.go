package engine

import (
	"context"
	"time"

	"swipefleet/internal/store"

	"github.com/google/uuid"
)

// Ledger is the append-only account status transition log.
type Ledger struct {
	store store.TransitionStore
}

// NewLedger creates a ledger over the given transition store.
func NewLedger(st store.TransitionStore) *Ledger {
	return &Ledger{store: st}
}

// Append records one committed status change.
func (l *Ledger) Append(ctx context.Context, tx store.DBTransaction, accountID uuid.UUID, before, after store.AccountStatus) error {
	return l.store.AppendTransition(ctx, tx, &store.StatusTransition{
		AccountID:    accountID,
		BeforeStatus: before,
		AfterStatus:  after,
		CreatedAt:    time.Now().UTC(),
	})
}

// History returns the account's transitions, newest first.
func (l *Ledger) History(ctx context.Context, accountID uuid.UUID) ([]store.StatusTransition, error) {
	return l.store.ListTransitions(ctx, accountID)
}

// PreviousExcluding returns the before-status of the newest transition
// whose before-status is not the excluded value. An account whose whole
// history is excluded transitions yields ErrNotFound.
func (l *Ledger) PreviousExcluding(ctx context.Context, accountID uuid.UUID, excluded store.AccountStatus) (store.AccountStatus, error) {
	rec, err := l.store.LatestTransitionExcluding(ctx, accountID, excluded)
	if err != nil {
		return "", mapNotFound(err, "status history for account", accountID)
	}
	return rec.BeforeStatus, nil
}

// Purge removes the account's whole ledger. Only account destruction
// may call this.
func (l *Ledger) Purge(ctx context.Context, tx store.DBTransaction, accountID uuid.UUID) error {
	return l.store.DeleteTransitionsForAccount(ctx, tx, accountID)
}

package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"swipefleet/internal/logger"
	"swipefleet/internal/store"

	"github.com/google/uuid"
)

// StatusCheckVPSName is the fixed, well-known name of the fallback VPS
// reserved for lightweight status-check jobs. It is not configurable at
// call time.
const StatusCheckVPSName = "status-check"

// Registry tracks execution resources and their binding to schedules.
type Registry struct {
	store     store.Store
	lifecycle *Lifecycle
	logger    *slog.Logger
}

// NewRegistry creates a resource registry. The lifecycle is bound later
// by NewCoordinator because the two reference each other.
func NewRegistry(st store.Store, logger *slog.Logger) *Registry {
	return &Registry{store: st, logger: logger}
}

// ResourceFor returns the VPS bound to the account's schedule. Status-check
// jobs fall back to the designated status-check VPS when the account has no
// schedule resource. Fails with ErrNoResourceAvailable when neither exists.
func (r *Registry) ResourceFor(ctx context.Context, account *store.Account, jobType store.JobType) (*store.VPS, error) {
	if account.ScheduleID != nil {
		vps, err := r.store.GetResourceBySchedule(ctx, *account.ScheduleID)
		if err == nil {
			return vps, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to resolve schedule resource: %w", err)
		}
	}

	if jobType == store.JobTypeStatusCheck {
		vps, err := r.store.GetResourceByName(ctx, StatusCheckVPSName)
		if err == nil {
			return vps, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to resolve status-check resource: %w", err)
		}
	}

	return nil, fmt.Errorf("account %s: %w", account.ID, ErrNoResourceAvailable)
}

// DestroyResource cancels every non-terminal job bound to the VPS and then
// removes the record, as one atomic operation. Zero bound jobs is success.
// If any cancellation fails the whole operation rolls back and a
// CascadeError reports the jobs still non-terminal.
func (r *Registry) DestroyResource(ctx context.Context, vpsID uuid.UUID) error {
	if _, err := r.store.GetResourceByID(ctx, vpsID); err != nil {
		return mapNotFound(err, "vps", vpsID)
	}

	tx, err := r.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cancelled, err := r.lifecycle.CancelAllForResource(ctx, tx, vpsID)
	if err != nil {
		return err
	}

	if err := r.store.DeleteResource(ctx, tx, vpsID); err != nil {
		return fmt.Errorf("failed to delete vps %s: %w", vpsID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit vps destruction: %w", err)
	}

	logger.FromContext(ctx, r.logger).Info("vps destroyed", "vps_id", vpsID, "cancelled_jobs", cancelled)
	return nil
}

package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// DBTransaction defines the methods shared by *sql.DB and *sql.Tx.
// This allows us to pass either a connection pool or an active transaction
// to the repository methods.
type DBTransaction interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Tx interface {
	DBTransaction
	Commit() error
	Rollback() error
}

// AccountStore handles account persistence.
type AccountStore interface {
	// CreateAccount inserts a new account.
	CreateAccount(ctx context.Context, tx DBTransaction, account *Account) error

	// GetAccountByID returns an account by its ID.
	GetAccountByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// ListAccounts returns all accounts, deleted ones included.
	// Callers compose selection predicates on top.
	ListAccounts(ctx context.Context) ([]Account, error)

	// UpdateAccountStatus sets the status column only.
	UpdateAccountStatus(ctx context.Context, tx DBTransaction, id uuid.UUID, status AccountStatus) error

	// AddSwipes accumulates n into the account's total swipe counter.
	AddSwipes(ctx context.Context, tx DBTransaction, id uuid.UUID, n int) error

	// DeleteAccount removes the account row.
	DeleteAccount(ctx context.Context, tx DBTransaction, id uuid.UUID) error

	// LockAccount serializes concurrent writers for one account within a
	// transaction. Implementations backed by Postgres take an advisory
	// xact lock; in-memory implementations may no-op because the engine
	// already holds a process-level lock.
	LockAccount(ctx context.Context, tx DBTransaction, id uuid.UUID) error
}

// JobStore handles the persistence of swipe jobs.
type JobStore interface {
	// CreateJob inserts a new job.
	CreateJob(ctx context.Context, tx DBTransaction, job *SwipeJob) error

	// GetJobByID returns a job by its ID.
	GetJobByID(ctx context.Context, id uuid.UUID) (*SwipeJob, error)

	// ListJobsByAccount returns the account's jobs in any of the given
	// statuses. An empty status slice means all statuses.
	ListJobsByAccount(ctx context.Context, tx DBTransaction, accountID uuid.UUID, statuses []JobStatus) ([]SwipeJob, error)

	// ListJobsByResource returns the jobs bound to a VPS in any of the
	// given statuses.
	ListJobsByResource(ctx context.Context, tx DBTransaction, vpsID uuid.UUID, statuses []JobStatus) ([]SwipeJob, error)

	// UpdateJobStatus moves a job to the given status and records the
	// swipe result and error message where applicable.
	UpdateJobStatus(ctx context.Context, tx DBTransaction, id uuid.UUID, status JobStatus, swipes int, errorMessage *string) error

	// CountJobs returns the number of jobs in any of the given statuses
	// across all accounts. Used by the in-flight metrics gauge.
	CountJobs(ctx context.Context, statuses []JobStatus) (int64, error)

	// DeleteJobsForAccount removes all job rows owned by the account.
	// Only the account destruction path may call this, after every
	// non-terminal job has been cancelled.
	DeleteJobsForAccount(ctx context.Context, tx DBTransaction, accountID uuid.UUID) error
}

// ResourceStore handles VPS records.
type ResourceStore interface {
	// CreateResource inserts a new VPS record.
	CreateResource(ctx context.Context, tx DBTransaction, vps *VPS) error

	// GetResourceByID returns a VPS by its ID.
	GetResourceByID(ctx context.Context, id uuid.UUID) (*VPS, error)

	// GetResourceByName returns a VPS by its well-known name.
	GetResourceByName(ctx context.Context, name string) (*VPS, error)

	// GetResourceBySchedule returns the VPS bound to a schedule.
	GetResourceBySchedule(ctx context.Context, scheduleID uuid.UUID) (*VPS, error)

	// ListResources returns all VPS records.
	ListResources(ctx context.Context) ([]VPS, error)

	// DeleteResource removes the VPS row.
	DeleteResource(ctx context.Context, tx DBTransaction, id uuid.UUID) error
}

// TransitionStore is the append-only status ledger.
type TransitionStore interface {
	// AppendTransition inserts one audit row.
	AppendTransition(ctx context.Context, tx DBTransaction, rec *StatusTransition) error

	// ListTransitions returns the account's transitions, newest first.
	ListTransitions(ctx context.Context, accountID uuid.UUID) ([]StatusTransition, error)

	// LatestTransitionExcluding returns the newest transition whose
	// before-status is not the excluded value.
	LatestTransitionExcluding(ctx context.Context, accountID uuid.UUID, excluded AccountStatus) (*StatusTransition, error)

	// DeleteTransitionsForAccount purges the account's ledger. Only the
	// account destruction path may call this.
	DeleteTransitionsForAccount(ctx context.Context, tx DBTransaction, accountID uuid.UUID) error
}

// Store combines the repositories with transaction control.
type Store interface {
	BeginTx(ctx context.Context) (Tx, error)
	Ping(ctx context.Context) error
	AccountStore
	JobStore
	ResourceStore
	TransitionStore
}

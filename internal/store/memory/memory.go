// Package memory provides a mutex-guarded in-memory Store.
// It backs the engine's concurrency tests and small single-node
// deployments; semantics mirror the postgres implementation.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"swipefleet/internal/store"

	"github.com/google/uuid"
)

// Store implements store.Store with in-process maps.
type Store struct {
	mu          sync.RWMutex
	accounts    map[uuid.UUID]store.Account
	resources   map[uuid.UUID]store.VPS
	jobs        map[uuid.UUID]store.SwipeJob
	transitions []store.StatusTransition
	nextTransID int64
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		accounts:  make(map[uuid.UUID]store.Account),
		resources: make(map[uuid.UUID]store.VPS),
		jobs:      make(map[uuid.UUID]store.SwipeJob),
	}
}

// tx satisfies store.Tx. The memory store applies writes immediately;
// transactionality comes from the engine's per-account lock.
type tx struct{}

func (tx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (tx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (tx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}
func (tx) Commit() error   { return nil }
func (tx) Rollback() error { return nil }

func (s *Store) BeginTx(ctx context.Context) (store.Tx, error) { return tx{}, nil }

func (s *Store) Ping(ctx context.Context) error { return nil }

// LockAccount is a no-op: the engine already serializes per-account work
// with an in-process lock, and there is no second replica to guard against.
func (s *Store) LockAccount(ctx context.Context, _ store.DBTransaction, id uuid.UUID) error {
	return nil
}

func (s *Store) CreateAccount(ctx context.Context, _ store.DBTransaction, account *store.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = *account
	return nil
}

func (s *Store) GetAccountByID(ctx context.Context, id uuid.UUID) (*store.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &a, nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]store.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateAccountStatus(ctx context.Context, _ store.DBTransaction, id uuid.UUID, status store.AccountStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return sql.ErrNoRows
	}
	a.Status = status
	s.accounts[id] = a
	return nil
}

func (s *Store) AddSwipes(ctx context.Context, _ store.DBTransaction, id uuid.UUID, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return sql.ErrNoRows
	}
	a.TotalSwipes += n
	s.accounts[id] = a
	return nil
}

func (s *Store) DeleteAccount(ctx context.Context, _ store.DBTransaction, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, id)
	return nil
}

func (s *Store) CreateJob(ctx context.Context, _ store.DBTransaction, job *store.SwipeJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = *job
	return nil
}

func (s *Store) GetJobByID(ctx context.Context, id uuid.UUID) (*store.SwipeJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &j, nil
}

func (s *Store) ListJobsByAccount(ctx context.Context, _ store.DBTransaction, accountID uuid.UUID, statuses []store.JobStatus) ([]store.SwipeJob, error) {
	return s.listJobs(func(j *store.SwipeJob) bool { return j.AccountID == accountID }, statuses), nil
}

func (s *Store) ListJobsByResource(ctx context.Context, _ store.DBTransaction, vpsID uuid.UUID, statuses []store.JobStatus) ([]store.SwipeJob, error) {
	return s.listJobs(func(j *store.SwipeJob) bool { return j.VPSID != nil && *j.VPSID == vpsID }, statuses), nil
}

func (s *Store) listJobs(match func(*store.SwipeJob) bool, statuses []store.JobStatus) []store.SwipeJob {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.SwipeJob
	for _, j := range s.jobs {
		if !match(&j) {
			continue
		}
		if len(statuses) > 0 && !statusIn(j.Status, statuses) {
			continue
		}
		out = append(out, j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *Store) UpdateJobStatus(ctx context.Context, _ store.DBTransaction, id uuid.UUID, status store.JobStatus, swipes int, errorMessage *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	// Terminal rows are immutable, mirroring the postgres guard.
	if j.Status.IsTerminal() {
		return nil
	}
	j.Status = status
	j.Swipes = swipes
	j.ErrorMessage = errorMessage
	now := time.Now().UTC()
	if status == store.JobStatusRunning && j.StartedAt == nil {
		j.StartedAt = &now
	}
	if status.IsTerminal() {
		j.FinishedAt = &now
	}
	s.jobs[id] = j
	return nil
}

func (s *Store) CountJobs(ctx context.Context, statuses []store.JobStatus) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, j := range s.jobs {
		if len(statuses) == 0 || statusIn(j.Status, statuses) {
			count++
		}
	}
	return count, nil
}

func (s *Store) DeleteJobsForAccount(ctx context.Context, _ store.DBTransaction, accountID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, j := range s.jobs {
		if j.AccountID == accountID {
			delete(s.jobs, id)
		}
	}
	return nil
}

func (s *Store) CreateResource(ctx context.Context, _ store.DBTransaction, vps *store.VPS) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[vps.ID] = *vps
	return nil
}

func (s *Store) GetResourceByID(ctx context.Context, id uuid.UUID) (*store.VPS, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.resources[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &v, nil
}

func (s *Store) GetResourceByName(ctx context.Context, name string) (*store.VPS, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.resources {
		if v.Name == name {
			v := v
			return &v, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *Store) GetResourceBySchedule(ctx context.Context, scheduleID uuid.UUID) (*store.VPS, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.resources {
		if v.ScheduleID != nil && *v.ScheduleID == scheduleID {
			v := v
			return &v, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *Store) ListResources(ctx context.Context) ([]store.VPS, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.VPS, 0, len(s.resources))
	for _, v := range s.resources {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DeleteResource(ctx context.Context, _ store.DBTransaction, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.resources, id)
	// Mirror the SQL schema's ON DELETE SET NULL.
	for jid, j := range s.jobs {
		if j.VPSID != nil && *j.VPSID == id {
			j.VPSID = nil
			s.jobs[jid] = j
		}
	}
	return nil
}

func (s *Store) AppendTransition(ctx context.Context, _ store.DBTransaction, rec *store.StatusTransition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTransID++
	rec.ID = s.nextTransID
	s.transitions = append(s.transitions, *rec)
	return nil
}

func (s *Store) ListTransitions(ctx context.Context, accountID uuid.UUID) ([]store.StatusTransition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []store.StatusTransition
	// transitions are appended in commit order; walk backwards for newest first
	for i := len(s.transitions) - 1; i >= 0; i-- {
		if s.transitions[i].AccountID == accountID {
			out = append(out, s.transitions[i])
		}
	}
	return out, nil
}

func (s *Store) LatestTransitionExcluding(ctx context.Context, accountID uuid.UUID, excluded store.AccountStatus) (*store.StatusTransition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.transitions) - 1; i >= 0; i-- {
		rec := s.transitions[i]
		if rec.AccountID == accountID && rec.BeforeStatus != excluded {
			return &rec, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *Store) DeleteTransitionsForAccount(ctx context.Context, _ store.DBTransaction, accountID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.transitions[:0]
	for _, rec := range s.transitions {
		if rec.AccountID != accountID {
			kept = append(kept, rec)
		}
	}
	s.transitions = kept
	return nil
}

func statusIn(status store.JobStatus, set []store.JobStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

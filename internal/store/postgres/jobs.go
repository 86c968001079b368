package postgres

import (
	"context"
	"fmt"

	"swipefleet/internal/store"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const jobColumns = "id, account_id, vps_id, status, job_type, created_by, swipes, error_message, created_at, started_at, finished_at"

func (s *Store) CreateJob(ctx context.Context, tx store.DBTransaction, job *store.SwipeJob) error {
	executor := s.getExecutor(tx)

	query := `
		INSERT INTO swipe_jobs (id, account_id, vps_id, status, job_type, created_by, swipes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := executor.ExecContext(ctx, query,
		job.ID, job.AccountID, job.VPSID, job.Status,
		job.Type, job.CreatedBy, job.Swipes, job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job for account %s: %w", job.AccountID, err)
	}
	return nil
}

func (s *Store) GetJobByID(ctx context.Context, id uuid.UUID) (*store.SwipeJob, error) {
	query := "SELECT " + jobColumns + " FROM swipe_jobs WHERE id = $1"

	var j store.SwipeJob
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&j.ID, &j.AccountID, &j.VPSID, &j.Status,
		&j.Type, &j.CreatedBy, &j.Swipes, &j.ErrorMessage,
		&j.CreatedAt, &j.StartedAt, &j.FinishedAt,
	)
	if err != nil {
		return nil, err
	}

	return &j, nil
}

func (s *Store) ListJobsByAccount(ctx context.Context, tx store.DBTransaction, accountID uuid.UUID, statuses []store.JobStatus) ([]store.SwipeJob, error) {
	return s.listJobs(ctx, tx, "account_id", accountID, statuses)
}

func (s *Store) ListJobsByResource(ctx context.Context, tx store.DBTransaction, vpsID uuid.UUID, statuses []store.JobStatus) ([]store.SwipeJob, error) {
	return s.listJobs(ctx, tx, "vps_id", vpsID, statuses)
}

func (s *Store) listJobs(ctx context.Context, tx store.DBTransaction, column string, id uuid.UUID, statuses []store.JobStatus) ([]store.SwipeJob, error) {
	executor := s.getExecutor(tx)

	args := []interface{}{id}
	query := fmt.Sprintf("SELECT %s FROM swipe_jobs WHERE %s = $1", jobColumns, column)

	if len(statuses) > 0 {
		query += " AND status = ANY($2)"
		args = append(args, pq.Array(statusStrings(statuses)))
	}
	query += " ORDER BY created_at ASC"

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs by %s: %w", column, err)
	}
	defer rows.Close()

	var jobs []store.SwipeJob
	for rows.Next() {
		var j store.SwipeJob
		if err := rows.Scan(
			&j.ID, &j.AccountID, &j.VPSID, &j.Status,
			&j.Type, &j.CreatedBy, &j.Swipes, &j.ErrorMessage,
			&j.CreatedAt, &j.StartedAt, &j.FinishedAt,
		); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}

	return jobs, rows.Err()
}

func (s *Store) UpdateJobStatus(ctx context.Context, tx store.DBTransaction, id uuid.UUID, status store.JobStatus, swipes int, errorMessage *string) error {
	executor := s.getExecutor(tx)

	// The non-terminal guard makes terminal rows immutable: a cancel
	// cascade racing an executor callback must not rewrite a finished job.
	query := `
		UPDATE swipe_jobs
		SET status = $1,
		    swipes = $2,
		    error_message = $3,
		    started_at = CASE WHEN $1 = 'running' THEN COALESCE(started_at, NOW()) ELSE started_at END,
		    finished_at = CASE WHEN $1 IN ('completed', 'failed', 'cancelled') THEN NOW() ELSE finished_at END
		WHERE id = $4 AND status IN ('pending', 'queued', 'running')
	`

	_, err := executor.ExecContext(ctx, query, status, swipes, errorMessage, id)
	return err
}

func (s *Store) CountJobs(ctx context.Context, statuses []store.JobStatus) (int64, error) {
	query := "SELECT COUNT(*) FROM swipe_jobs"
	var args []interface{}

	if len(statuses) > 0 {
		query += " WHERE status = ANY($1)"
		args = append(args, pq.Array(statusStrings(statuses)))
	}

	var count int64
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (s *Store) DeleteJobsForAccount(ctx context.Context, tx store.DBTransaction, accountID uuid.UUID) error {
	executor := s.getExecutor(tx)

	_, err := executor.ExecContext(ctx, "DELETE FROM swipe_jobs WHERE account_id = $1", accountID)
	return err
}

func statusStrings(statuses []store.JobStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

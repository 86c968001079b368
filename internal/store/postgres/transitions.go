package postgres

import (
	"context"

	"swipefleet/internal/store"

	"github.com/google/uuid"
)

func (s *Store) AppendTransition(ctx context.Context, tx store.DBTransaction, rec *store.StatusTransition) error {
	executor := s.getExecutor(tx)

	query := `
		INSERT INTO status_transitions (account_id, before_status, after_status, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	return executor.QueryRowContext(ctx, query,
		rec.AccountID, rec.BeforeStatus, rec.AfterStatus, rec.CreatedAt,
	).Scan(&rec.ID)
}

func (s *Store) ListTransitions(ctx context.Context, accountID uuid.UUID) ([]store.StatusTransition, error) {
	query := `
		SELECT id, account_id, before_status, after_status, created_at
		FROM status_transitions
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transitions []store.StatusTransition
	for rows.Next() {
		var rec store.StatusTransition
		if err := rows.Scan(&rec.ID, &rec.AccountID, &rec.BeforeStatus, &rec.AfterStatus, &rec.CreatedAt); err != nil {
			return nil, err
		}
		transitions = append(transitions, rec)
	}

	return transitions, rows.Err()
}

func (s *Store) LatestTransitionExcluding(ctx context.Context, accountID uuid.UUID, excluded store.AccountStatus) (*store.StatusTransition, error) {
	query := `
		SELECT id, account_id, before_status, after_status, created_at
		FROM status_transitions
		WHERE account_id = $1 AND before_status != $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var rec store.StatusTransition
	err := s.db.QueryRowContext(ctx, query, accountID, excluded).Scan(
		&rec.ID, &rec.AccountID, &rec.BeforeStatus, &rec.AfterStatus, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

func (s *Store) DeleteTransitionsForAccount(ctx context.Context, tx store.DBTransaction, accountID uuid.UUID) error {
	executor := s.getExecutor(tx)

	_, err := executor.ExecContext(ctx, "DELETE FROM status_transitions WHERE account_id = $1", accountID)
	return err
}

package postgres

import (
	"context"
	"fmt"

	"swipefleet/internal/store"

	"github.com/google/uuid"
)

func (s *Store) CreateAccount(ctx context.Context, tx store.DBTransaction, account *store.Account) error {
	executor := s.getExecutor(tx)

	query := `
		INSERT INTO accounts (id, username, status, schedule_id, warm_up, gold, proxy_active, total_swipes, auth_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := executor.ExecContext(ctx, query,
		account.ID, account.Username, account.Status, account.ScheduleID,
		account.WarmUp, account.Gold, account.ProxyActive,
		account.TotalSwipes, account.AuthToken, account.CreatedAt,
	)
	return err
}

func (s *Store) GetAccountByID(ctx context.Context, id uuid.UUID) (*store.Account, error) {
	query := "SELECT id, username, status, schedule_id, warm_up, gold, proxy_active, total_swipes, auth_token, created_at FROM accounts WHERE id = $1"

	var a store.Account
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.Username, &a.Status, &a.ScheduleID,
		&a.WarmUp, &a.Gold, &a.ProxyActive,
		&a.TotalSwipes, &a.AuthToken, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &a, nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]store.Account, error) {
	query := "SELECT id, username, status, schedule_id, warm_up, gold, proxy_active, total_swipes, auth_token, created_at FROM accounts ORDER BY created_at ASC"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []store.Account
	for rows.Next() {
		var a store.Account
		if err := rows.Scan(
			&a.ID, &a.Username, &a.Status, &a.ScheduleID,
			&a.WarmUp, &a.Gold, &a.ProxyActive,
			&a.TotalSwipes, &a.AuthToken, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}

	return accounts, rows.Err()
}

func (s *Store) UpdateAccountStatus(ctx context.Context, tx store.DBTransaction, id uuid.UUID, status store.AccountStatus) error {
	executor := s.getExecutor(tx)

	_, err := executor.ExecContext(ctx, "UPDATE accounts SET status = $1 WHERE id = $2", status, id)
	return err
}

func (s *Store) AddSwipes(ctx context.Context, tx store.DBTransaction, id uuid.UUID, n int) error {
	executor := s.getExecutor(tx)

	// Additive accumulation, never overwrite.
	_, err := executor.ExecContext(ctx, "UPDATE accounts SET total_swipes = total_swipes + $1 WHERE id = $2", n, id)
	return err
}

func (s *Store) DeleteAccount(ctx context.Context, tx store.DBTransaction, id uuid.UUID) error {
	executor := s.getExecutor(tx)

	_, err := executor.ExecContext(ctx, "DELETE FROM accounts WHERE id = $1", id)
	return err
}

// LockAccount takes an advisory xact lock scoped to the account, so the
// admission check-then-create sequence stays atomic across replicas.
// The lock is released automatically on commit or rollback.
func (s *Store) LockAccount(ctx context.Context, tx store.DBTransaction, id uuid.UUID) error {
	if tx == nil {
		return fmt.Errorf("LockAccount requires an active transaction")
	}

	accountLockKey := int32(id[0])<<24 | int32(id[1])<<16 | int32(id[2])<<8 | int32(id[3])

	_, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(2, $1)", accountLockKey)
	return err
}

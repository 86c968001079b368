package postgres

import (
	"context"

	"swipefleet/internal/store"

	"github.com/google/uuid"
)

const vpsColumns = "id, name, address, owner_id, schedule_id, created_at"

func (s *Store) CreateResource(ctx context.Context, tx store.DBTransaction, vps *store.VPS) error {
	executor := s.getExecutor(tx)

	query := `
		INSERT INTO vps (id, name, address, owner_id, schedule_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := executor.ExecContext(ctx, query,
		vps.ID, vps.Name, vps.Address, vps.OwnerID, vps.ScheduleID, vps.CreatedAt,
	)
	return err
}

func (s *Store) GetResourceByID(ctx context.Context, id uuid.UUID) (*store.VPS, error) {
	return s.getResource(ctx, "SELECT "+vpsColumns+" FROM vps WHERE id = $1", id)
}

func (s *Store) GetResourceByName(ctx context.Context, name string) (*store.VPS, error) {
	return s.getResource(ctx, "SELECT "+vpsColumns+" FROM vps WHERE name = $1", name)
}

func (s *Store) GetResourceBySchedule(ctx context.Context, scheduleID uuid.UUID) (*store.VPS, error) {
	return s.getResource(ctx, "SELECT "+vpsColumns+" FROM vps WHERE schedule_id = $1", scheduleID)
}

func (s *Store) getResource(ctx context.Context, query string, arg interface{}) (*store.VPS, error) {
	var v store.VPS
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&v.ID, &v.Name, &v.Address, &v.OwnerID, &v.ScheduleID, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

func (s *Store) ListResources(ctx context.Context) ([]store.VPS, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+vpsColumns+" FROM vps ORDER BY created_at ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []store.VPS
	for rows.Next() {
		var v store.VPS
		if err := rows.Scan(&v.ID, &v.Name, &v.Address, &v.OwnerID, &v.ScheduleID, &v.CreatedAt); err != nil {
			return nil, err
		}
		resources = append(resources, v)
	}

	return resources, rows.Err()
}

func (s *Store) DeleteResource(ctx context.Context, tx store.DBTransaction, id uuid.UUID) error {
	executor := s.getExecutor(tx)

	_, err := executor.ExecContext(ctx, "DELETE FROM vps WHERE id = $1", id)
	return err
}

package cycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kpm/internal/domain/kpi"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const cycleColumns = `id, name, period_type, start_date, end_date, status,
  COALESCE(created_by, ''), created_at, closed_at`

func scanCycle(row pgx.Row) (Cycle, error) {
	var c Cycle
	err := row.Scan(&c.ID, &c.Name, &c.PeriodType, &c.StartDate, &c.EndDate,
		&c.Status, &c.CreatedBy, &c.CreatedAt, &c.ClosedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Cycle{}, ErrNotFound
	}
	if err != nil {
		return Cycle{}, err
	}
	return c, nil
}

func (s *Store) Create(ctx context.Context, c Cycle) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO cycles (name, period_type, start_date, end_date, status, created_by)
    VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
    RETURNING id
  `, c.Name, c.PeriodType, c.StartDate, c.EndDate, c.Status, c.CreatedBy).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert cycle: %w", err)
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, cycleID string) (Cycle, error) {
	return scanCycle(s.DB.QueryRow(ctx, "SELECT "+cycleColumns+" FROM cycles WHERE id = $1", cycleID))
}

func (s *Store) List(ctx context.Context, status string) ([]Cycle, error) {
	query := "SELECT " + cycleColumns + " FROM cycles"
	args := []any{}
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY start_date DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cycles: %w", err)
	}
	defer rows.Close()

	var out []Cycle
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) SetStatus(ctx context.Context, cycleID, status string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE cycles SET status = $2 WHERE id = $1", cycleID, status)
	if err != nil {
		return fmt.Errorf("update cycle status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) HasActive(ctx context.Context) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM cycles WHERE status = $1)", StatusActive).Scan(&exists)
	return exists, err
}

func (s *Store) Close(ctx context.Context, cycleID string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin close tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
    UPDATE cycles SET status = $2, closed_at = NOW()
    WHERE id = $1 AND status = $3
  `, cycleID, StatusClosed, StatusActive)
	if err != nil {
		return fmt.Errorf("close cycle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotActive
	}

	_, err = tx.Exec(ctx, `
    UPDATE kpi_definitions SET status = $2, last_modified_at = NOW()
    WHERE cycle_id = $1 AND status = $3
  `, cycleID, kpi.StatusLockedGoals, kpi.StatusApproved)
	if err != nil {
		return fmt.Errorf("lock goals: %w", err)
	}

	_, err = tx.Exec(ctx, `
    UPDATE kpi_actuals SET status = $2, last_modified_at = NOW()
    WHERE kpi_definition_id IN (SELECT id FROM kpi_definitions WHERE cycle_id = $1)
      AND status = $3
  `, cycleID, kpi.ActualStatusLocked, kpi.ActualStatusSubmitted)
	if err != nil {
		return fmt.Errorf("lock actuals: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *Store) ExpiredActive(ctx context.Context, now time.Time) ([]Cycle, error) {
	rows, err := s.DB.Query(ctx,
		"SELECT "+cycleColumns+" FROM cycles WHERE status = $1 AND end_date < $2",
		StatusActive, now)
	if err != nil {
		return nil, fmt.Errorf("query expired cycles: %w", err)
	}
	defer rows.Close()

	var out []Cycle
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

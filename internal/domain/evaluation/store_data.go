package evaluation

import (
	"context"
	"errors"
	"fmt"

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

const evaluationColumns = `id, user_id, cycle_id, status, overall_score,
  overall_percentage, total_weight, COALESCE(self_comment, ''),
  COALESCE(manager_comment, ''), calibration, final_score,
  COALESCE(reviewer_id::text, ''), submitted_at, completed_at, created_at, last_modified_at`

func scanEvaluation(row pgx.Row) (Evaluation, error) {
	var e Evaluation
	err := row.Scan(&e.ID, &e.UserID, &e.CycleID, &e.Status, &e.OverallScore,
		&e.OverallPercentage, &e.TotalWeight, &e.SelfComment, &e.ManagerComment,
		&e.Calibration, &e.FinalScore, &e.ReviewerID, &e.SubmittedAt,
		&e.CompletedAt, &e.CreatedAt, &e.LastModifiedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Evaluation{}, ErrNotFound
	}
	if err != nil {
		return Evaluation{}, err
	}
	return e, nil
}

func (s *Store) Upsert(ctx context.Context, e Evaluation) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO evaluations (user_id, cycle_id, status, overall_score, overall_percentage,
      total_weight, self_comment, final_score)
    VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)
    ON CONFLICT (user_id, cycle_id) DO UPDATE SET
      overall_score = EXCLUDED.overall_score,
      overall_percentage = EXCLUDED.overall_percentage,
      total_weight = EXCLUDED.total_weight,
      self_comment = COALESCE(EXCLUDED.self_comment, evaluations.self_comment),
      final_score = EXCLUDED.final_score,
      last_modified_at = NOW()
    RETURNING id
  `, e.UserID, e.CycleID, e.Status, e.OverallScore, e.OverallPercentage,
		e.TotalWeight, e.SelfComment, e.FinalScore).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert evaluation: %w", err)
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, evaluationID string) (Evaluation, error) {
	return scanEvaluation(s.DB.QueryRow(ctx,
		"SELECT "+evaluationColumns+" FROM evaluations WHERE id = $1", evaluationID))
}

func (s *Store) GetByUserCycle(ctx context.Context, userID, cycleID string) (Evaluation, error) {
	return scanEvaluation(s.DB.QueryRow(ctx,
		"SELECT "+evaluationColumns+" FROM evaluations WHERE user_id = $1 AND cycle_id = $2",
		userID, cycleID))
}

func (s *Store) Update(ctx context.Context, e Evaluation) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluations
    SET status = $2, manager_comment = NULLIF($3, ''), calibration = $4,
      final_score = $5, reviewer_id = NULLIF($6, '')::uuid,
      submitted_at = $7, completed_at = $8, last_modified_at = NOW()
    WHERE id = $1
  `, e.ID, e.Status, e.ManagerComment, e.Calibration, e.FinalScore,
		e.ReviewerID, e.SubmittedAt, e.CompletedAt)
	if err != nil {
		return fmt.Errorf("update evaluation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListForCycle(ctx context.Context, cycleID string) ([]Evaluation, error) {
	rows, err := s.DB.Query(ctx,
		"SELECT "+evaluationColumns+" FROM evaluations WHERE cycle_id = $1 ORDER BY created_at",
		cycleID)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	var out []Evaluation
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Definitions(ctx context.Context, cycleID, userID string) ([]kpi.Definition, error) {
	return kpi.NewStore(s.DB).ListDefinitions(ctx, cycleID, userID)
}

func (s *Store) Actuals(ctx context.Context, cycleID, userID string) ([]kpi.Actual, error) {
	return kpi.NewStore(s.DB).ListActuals(ctx, cycleID, userID)
}

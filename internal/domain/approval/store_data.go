package approval

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kpm/internal/domain/kpi"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const decisionColumns = `id, kpi_definition_id, level, approver_id, status,
	COALESCE(comment, ''), decided_at, created_at`

func scanDecision(row pgx.Row) (Decision, error) {
	var d Decision
	err := row.Scan(&d.ID, &d.KpiID, &d.Level, &d.ApproverID, &d.Status,
		&d.Comment, &d.DecidedAt, &d.CreatedAt)

	return d, err
}

func (s *Store) StartWorkflow(ctx context.Context, kpiIDs []string, approverID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin submit tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE approvals SET superseded = TRUE
		WHERE kpi_definition_id = ANY($1) AND NOT superseded
	`, kpiIDs)
	if err != nil {
		return fmt.Errorf("supersede approvals: %w", err)
	}

	for _, id := range kpiIDs {
		_, err = tx.Exec(ctx, `
			INSERT INTO approvals (kpi_definition_id, level, approver_id, status)
			VALUES ($1, $2, $3, $4)
		`, id, LevelLineManager, approverID, StatusPending)
		if err != nil {
			return fmt.Errorf("insert approval: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE kpi_definitions
		SET status = $2, rejection_reason = NULL, submitted_at = NOW(), last_modified_at = NOW()
		WHERE id = ANY($1)
	`, kpiIDs, kpi.StatusPendingLM)
	if err != nil {
		return fmt.Errorf("update kpi status: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *Store) Decide(ctx context.Context, p DecideParams) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin decide tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE approvals
		SET status = $4, comment = NULLIF($5, ''), decided_at = NOW()
		WHERE kpi_definition_id = $1 AND level = $2 AND approver_id = $3
		  AND status = $6 AND NOT superseded
	`, p.KpiID, p.Level, p.ApproverID, p.Status, p.Comment, StatusPending)
	if err != nil {
		return fmt.Errorf("update approval: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLevelDecided
	}

	if p.NextApproverID != "" {
		_, err = tx.Exec(ctx, `
			INSERT INTO approvals (kpi_definition_id, level, approver_id, status)
			VALUES ($1, $2, $3, $4)
		`, p.KpiID, p.Level+1, p.NextApproverID, StatusPending)
		if err != nil {
			return fmt.Errorf("insert next approval: %w", err)
		}
	}

	if p.Status == StatusRejected {
		_, err = tx.Exec(ctx, `
			UPDATE kpi_definitions
			SET status = $2, rejection_reason = NULLIF($3, ''), last_modified_at = NOW()
			WHERE id = $1
		`, p.KpiID, p.NextKpiStatus, p.Comment)
	} else {
		_, err = tx.Exec(ctx, `
			UPDATE kpi_definitions SET status = $2, last_modified_at = NOW()
			WHERE id = $1
		`, p.KpiID, p.NextKpiStatus)
	}
	if err != nil {
		return fmt.Errorf("update kpi status: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *Store) LiveDecisions(ctx context.Context, kpiID string) ([]Decision, error) {
	return s.queryDecisions(ctx, `
		SELECT `+decisionColumns+` FROM approvals
		WHERE kpi_definition_id = $1 AND NOT superseded
		ORDER BY level
	`, kpiID)
}

func (s *Store) History(ctx context.Context, kpiID string) ([]Decision, error) {
	return s.queryDecisions(ctx, `
		SELECT `+decisionColumns+` FROM approvals
		WHERE kpi_definition_id = $1
		ORDER BY created_at, level
	`, kpiID)
}

func (s *Store) queryDecisions(ctx context.Context, query string, args ...any) ([]Decision, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query approvals: %w", err)
	}
	defer rows.Close()

	var out []Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan approval: %w", err)
		}
		out = append(out, d)
	}

	return out, rows.Err()
}

func (s *Store) PendingForApprover(ctx context.Context, approverID string) ([]PendingItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.id, a.kpi_definition_id, a.level, a.approver_id, a.status,
			COALESCE(a.comment, ''), a.decided_at, a.created_at,
			k.id, k.cycle_id, k.owner_id, k.title, k.type, k.unit, k.target, k.weight,
			COALESCE(k.formula, ''), COALESCE(k.data_source, ''), k.status,
			COALESCE(k.rejection_reason, ''), k.created_at, k.submitted_at, k.last_modified_at
		FROM approvals a
		JOIN kpi_definitions k ON k.id = a.kpi_definition_id
		WHERE a.approver_id = $1 AND a.status = $2 AND NOT a.superseded
		ORDER BY a.created_at
	`, approverID, StatusPending)
	if err != nil {
		return nil, fmt.Errorf("query pending approvals: %w", err)
	}
	defer rows.Close()

	var out []PendingItem
	for rows.Next() {
		var item PendingItem
		d := &item.Decision
		k := &item.Kpi
		err := rows.Scan(&d.ID, &d.KpiID, &d.Level, &d.ApproverID, &d.Status,
			&d.Comment, &d.DecidedAt, &d.CreatedAt,
			&k.ID, &k.CycleID, &k.OwnerID, &k.Title, &k.Type, &k.Unit, &k.Target, &k.Weight,
			&k.Formula, &k.DataSource, &k.Status,
			&k.RejectionReason, &k.CreatedAt, &k.SubmittedAt, &k.LastModifiedAt)
		if err != nil {
			return nil, fmt.Errorf("scan pending approval: %w", err)
		}
		out = append(out, item)
	}

	return out, rows.Err()
}

func (s *Store) OwnerDefinitions(ctx context.Context, cycleID, ownerID string) ([]kpi.Definition, error) {
	return kpi.NewStore(s.pool).ListDefinitions(ctx, cycleID, ownerID)
}

func (s *Store) Definition(ctx context.Context, kpiID string) (kpi.Definition, error) {
	return kpi.NewStore(s.pool).GetDefinition(ctx, kpiID)
}

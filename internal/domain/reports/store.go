package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// LoadRows builds one report row per active employee for a cycle, joining
// KPI counts, reported actuals and the stored evaluation when one exists.
func (s *Store) LoadRows(ctx context.Context, cycleID string) ([]Row, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT u.id, u.name, u.role,
           COALESCE(u.org_unit_id::text, ''), COALESCE(o.name, ''),
           COUNT(DISTINCT d.id),
           COUNT(DISTINCT a.kpi_definition_id),
           COALESCE(e.overall_score, 0), COALESCE(e.overall_percentage, 0),
           COALESCE(e.status, '')
    FROM users u
    LEFT JOIN org_units o ON o.id = u.org_unit_id
    LEFT JOIN kpi_definitions d ON d.owner_id = u.id AND d.cycle_id = $1
    LEFT JOIN kpi_actuals a ON a.kpi_definition_id = d.id AND a.status != 'SUPERSEDED'
    LEFT JOIN evaluations e ON e.user_id = u.id AND e.cycle_id = $1
    WHERE u.status = 'ACTIVE'
    GROUP BY u.id, u.name, u.role, u.org_unit_id, o.name,
             e.overall_score, e.overall_percentage, e.status
    ORDER BY u.name
  `, cycleID)
	if err != nil {
		return nil, fmt.Errorf("query report rows: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		err := rows.Scan(&r.UserID, &r.Name, &r.Role, &r.OrgUnitID, &r.OrgUnitName,
			&r.KpiCount, &r.ReportedKpis, &r.OverallScore, &r.OverallPercentage,
			&r.EvaluationStatus)
		if err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// EvaluationExport carries everything the PDF export prints.
type EvaluationExport struct {
	EvaluationID      string
	UserName          string
	UserEmail         string
	CycleName         string
	CycleStart        time.Time
	CycleEnd          time.Time
	Status            string
	OverallScore      float64
	OverallPercentage float64
	FinalScore        float64
	ManagerComment    string
	Kpis              []EvaluationExportKpi
}

type EvaluationExportKpi struct {
	Title      string
	Weight     float64
	Target     float64
	Actual     float64
	Percentage float64
	Score      int
}

func (s *Store) LoadEvaluationExport(ctx context.Context, evaluationID string) (EvaluationExport, error) {
	var export EvaluationExport
	var userID, cycleID string
	err := s.DB.QueryRow(ctx, `
    SELECT e.id, e.user_id, e.cycle_id, u.name, u.email,
           c.name, c.start_date, c.end_date,
           e.status, e.overall_score, e.overall_percentage, e.final_score,
           COALESCE(e.manager_comment, '')
    FROM evaluations e
    JOIN users u ON u.id = e.user_id
    JOIN cycles c ON c.id = e.cycle_id
    WHERE e.id = $1
  `, evaluationID).Scan(&export.EvaluationID, &userID, &cycleID,
		&export.UserName, &export.UserEmail,
		&export.CycleName, &export.CycleStart, &export.CycleEnd,
		&export.Status, &export.OverallScore, &export.OverallPercentage,
		&export.FinalScore, &export.ManagerComment)
	if err != nil {
		return EvaluationExport{}, fmt.Errorf("load evaluation export: %w", err)
	}

	rows, err := s.DB.Query(ctx, `
    SELECT d.title, d.weight, d.target,
           COALESCE(a.actual_value, 0), COALESCE(a.percentage, 0), COALESCE(a.score, 0)
    FROM kpi_definitions d
    LEFT JOIN kpi_actuals a ON a.kpi_definition_id = d.id AND a.status != 'SUPERSEDED'
    WHERE d.cycle_id = $1 AND d.owner_id = $2
    ORDER BY d.created_at
  `, cycleID, userID)
	if err != nil {
		return EvaluationExport{}, fmt.Errorf("load export kpis: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k EvaluationExportKpi
		if err := rows.Scan(&k.Title, &k.Weight, &k.Target, &k.Actual, &k.Percentage, &k.Score); err != nil {
			return EvaluationExport{}, fmt.Errorf("scan export kpi: %w", err)
		}
		export.Kpis = append(export.Kpis, k)
	}
	return export, rows.Err()
}

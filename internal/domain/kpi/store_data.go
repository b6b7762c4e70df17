package kpi

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const definitionColumns = `id, cycle_id, owner_id, title, type, unit, target, weight,
  COALESCE(formula, ''), COALESCE(data_source, ''), status, COALESCE(rejection_reason, ''),
  created_at, submitted_at, last_modified_at`

func scanDefinition(row pgx.Row) (Definition, error) {
	var def Definition
	err := row.Scan(&def.ID, &def.CycleID, &def.OwnerID, &def.Title, &def.Type, &def.Unit,
		&def.Target, &def.Weight, &def.Formula, &def.DataSource, &def.Status,
		&def.RejectionReason, &def.CreatedAt, &def.SubmittedAt, &def.LastModifiedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Definition{}, ErrNotFound
	}
	if err != nil {
		return Definition{}, err
	}
	return def, nil
}

func (s *Store) CreateDefinition(ctx context.Context, def Definition) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO kpi_definitions (cycle_id, owner_id, title, type, unit, target, weight, formula, data_source, status)
    VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), $10)
    RETURNING id
  `, def.CycleID, def.OwnerID, def.Title, def.Type, def.Unit, def.Target, def.Weight,
		def.Formula, def.DataSource, def.Status).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateDefinition(ctx context.Context, def Definition) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE kpi_definitions
    SET title = $1, type = $2, unit = $3, target = $4, weight = $5,
        formula = NULLIF($6, ''), data_source = NULLIF($7, ''), status = $8,
        last_modified_at = now()
    WHERE id = $9
  `, def.Title, def.Type, def.Unit, def.Target, def.Weight, def.Formula, def.DataSource, def.Status, def.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteDefinition(ctx context.Context, kpiID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM kpi_definitions WHERE id = $1", kpiID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) GetDefinition(ctx context.Context, kpiID string) (Definition, error) {
	return scanDefinition(s.DB.QueryRow(ctx, "SELECT "+definitionColumns+" FROM kpi_definitions WHERE id = $1", kpiID))
}

func (s *Store) ListDefinitions(ctx context.Context, cycleID, ownerID string) ([]Definition, error) {
	query := "SELECT " + definitionColumns + " FROM kpi_definitions WHERE 1=1"
	args := []any{}
	if cycleID != "" {
		args = append(args, cycleID)
		query += " AND cycle_id = $1"
	}
	if ownerID != "" {
		args = append(args, ownerID)
		if len(args) == 1 {
			query += " AND owner_id = $1"
		} else {
			query += " AND owner_id = $2"
		}
	}
	query += " ORDER BY created_at"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []Definition
	for rows.Next() {
		def, err := scanDefinition(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

func (s *Store) ListByStatus(ctx context.Context, cycleID, status string) ([]Definition, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+definitionColumns+" FROM kpi_definitions WHERE cycle_id = $1 AND status = $2 ORDER BY created_at", cycleID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []Definition
	for rows.Next() {
		def, err := scanDefinition(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

// SubmitActual supersedes any live actual for the definition and inserts the
// new one in a single transaction, keeping at most one live actual per KPI.
func (s *Store) SubmitActual(ctx context.Context, actual Actual) (string, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
    UPDATE kpi_actuals SET status = $1, last_modified_at = now()
    WHERE kpi_definition_id = $2 AND status = $3
  `, ActualStatusSuperseded, actual.KpiID, ActualStatusSubmitted); err != nil {
		return "", err
	}

	var id string
	if err := tx.QueryRow(ctx, `
    INSERT INTO kpi_actuals (kpi_definition_id, actual_value, percentage, score, self_comment, status)
    VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
    RETURNING id
  `, actual.KpiID, actual.ActualValue, actual.Percentage, actual.Score, actual.SelfComment, actual.Status).Scan(&id); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

const actualColumns = `id, kpi_definition_id, actual_value, percentage, score,
  COALESCE(self_comment, ''), status, submitted_at, last_modified_at`

func scanActual(row pgx.Row) (Actual, error) {
	var actual Actual
	err := row.Scan(&actual.ID, &actual.KpiID, &actual.ActualValue, &actual.Percentage,
		&actual.Score, &actual.SelfComment, &actual.Status, &actual.SubmittedAt, &actual.LastModifiedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Actual{}, ErrActualNotFound
	}
	if err != nil {
		return Actual{}, err
	}
	return actual, nil
}

func (s *Store) GetActual(ctx context.Context, kpiID string) (Actual, error) {
	return scanActual(s.DB.QueryRow(ctx, `
    SELECT `+actualColumns+`
    FROM kpi_actuals
    WHERE kpi_definition_id = $1 AND status != $2
  `, kpiID, ActualStatusSuperseded))
}

func (s *Store) ListActuals(ctx context.Context, cycleID, ownerID string) ([]Actual, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT a.id, a.kpi_definition_id, a.actual_value, a.percentage, a.score,
           COALESCE(a.self_comment, ''), a.status, a.submitted_at, a.last_modified_at
    FROM kpi_actuals a
    JOIN kpi_definitions d ON a.kpi_definition_id = d.id
    WHERE d.cycle_id = $1 AND d.owner_id = $2 AND a.status != $3
    ORDER BY a.submitted_at
  `, cycleID, ownerID, ActualStatusSuperseded)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actuals []Actual
	for rows.Next() {
		actual, err := scanActual(rows)
		if err != nil {
			return nil, err
		}
		actuals = append(actuals, actual)
	}
	return actuals, rows.Err()
}

func (s *Store) AddEvidence(ctx context.Context, file EvidenceFile, descriptionEnc []byte) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO evidence_files (actual_id, file_name, file_size, file_type, uploaded_by, description_enc)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING id
  `, file.ActualID, file.FileName, file.FileSize, file.FileType, file.UploadedBy, descriptionEnc).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) ListEvidence(ctx context.Context, actualID string) ([]EvidenceFile, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, actual_id, file_name, file_size, file_type, uploaded_by, uploaded_at
    FROM evidence_files
    WHERE actual_id = $1
    ORDER BY uploaded_at
  `, actualID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []EvidenceFile
	for rows.Next() {
		var file EvidenceFile
		if err := rows.Scan(&file.ID, &file.ActualID, &file.FileName, &file.FileSize, &file.FileType, &file.UploadedBy, &file.UploadedAt); err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

func (s *Store) EvidenceDescriptionEnc(ctx context.Context, evidenceID string) ([]byte, error) {
	var enc []byte
	err := s.DB.QueryRow(ctx, "SELECT description_enc FROM evidence_files WHERE id = $1", evidenceID).Scan(&enc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEvidenceNotFound
	}
	if err != nil {
		return nil, err
	}
	return enc, nil
}

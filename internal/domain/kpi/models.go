package kpi

import (
	"time"

	"kpm/internal/domain/scoring"
)

// Definition is one KPI goal owned by a user within a cycle.
type Definition struct {
	ID              string          `json:"id"`
	CycleID         string          `json:"cycleId"`
	OwnerID         string          `json:"userId"`
	Title           string          `json:"title"`
	Type            scoring.KpiType `json:"type"`
	Unit            string          `json:"unit"`
	Target          float64         `json:"target"`
	Weight          float64         `json:"weight"`
	Formula         string          `json:"formula,omitempty"`
	DataSource      string          `json:"dataSource,omitempty"`
	Status          string          `json:"status"`
	RejectionReason string          `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	SubmittedAt     *time.Time      `json:"submittedAt,omitempty"`
	LastModifiedAt  *time.Time      `json:"lastModifiedAt,omitempty"`
}

// Actual is one reported achievement for a definition. Percentage and score
// are always derived through the scoring engine, never written directly.
type Actual struct {
	ID             string     `json:"id"`
	KpiID          string     `json:"kpiDefinitionId"`
	ActualValue    float64    `json:"actualValue"`
	Percentage     float64    `json:"percentage"`
	Score          int        `json:"score"`
	SelfComment    string     `json:"selfComment,omitempty"`
	Status         string     `json:"status"`
	SubmittedAt    time.Time  `json:"submittedAt"`
	LastModifiedAt *time.Time `json:"lastModifiedAt,omitempty"`
}

// EvidenceFile is blob metadata only; file bytes live in external storage.
type EvidenceFile struct {
	ID          string    `json:"id"`
	ActualID    string    `json:"actualId"`
	FileName    string    `json:"fileName"`
	FileSize    int64     `json:"fileSize"`
	FileType    string    `json:"fileType"`
	UploadedBy  string    `json:"uploadedBy"`
	UploadedAt  time.Time `json:"uploadedAt"`
	Description string    `json:"description,omitempty"`
}

// Weighted maps definitions into the scoring engine's aggregation input.
func Weighted(definitions []Definition) []scoring.WeightedKpi {
	out := make([]scoring.WeightedKpi, 0, len(definitions))
	for _, def := range definitions {
		out = append(out, scoring.WeightedKpi{ID: def.ID, Title: def.Title, Weight: def.Weight})
	}
	return out
}

// Scored maps live actuals into the scoring engine's aggregation input.
func Scored(actuals []Actual) []scoring.ScoredActual {
	out := make([]scoring.ScoredActual, 0, len(actuals))
	for _, actual := range actuals {
		out = append(out, scoring.ScoredActual{
			KpiID:       actual.KpiID,
			ActualValue: actual.ActualValue,
			Percentage:  actual.Percentage,
			Score:       actual.Score,
		})
	}
	return out
}

package evaluation

import (
	"time"

	"kpm/internal/domain/kpi"
	"kpm/internal/domain/scoring"
)

// Evaluation is the aggregated result for one (user, cycle) pair. Scores
// are derived from the owner's KPI actuals; reviewers may add a bounded
// calibration adjustment on top.
type Evaluation struct {
	ID                string     `json:"id"`
	UserID            string     `json:"userId"`
	CycleID           string     `json:"cycleId"`
	Status            string     `json:"status"`
	OverallScore      float64    `json:"overallScore"`
	OverallPercentage float64    `json:"overallPercentage"`
	TotalWeight       float64    `json:"totalWeight"`
	SelfComment       string     `json:"selfComment,omitempty"`
	ManagerComment    string     `json:"managerComment,omitempty"`
	Calibration       float64    `json:"calibration"`
	FinalScore        float64    `json:"finalScore"`
	ReviewerID        string     `json:"reviewerId,omitempty"`
	SubmittedAt       *time.Time `json:"submittedAt,omitempty"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	LastModifiedAt    *time.Time `json:"lastModifiedAt,omitempty"`
}

// Detail is the full computed view: the evaluation header plus the per-KPI
// rows that produced it.
type Detail struct {
	Evaluation Evaluation               `json:"evaluation"`
	Kpis       []KpiResult              `json:"kpis"`
	Validation scoring.ValidationResult `json:"validation"`
	Insights   []Insight                `json:"insights"`
}

// KpiResult pairs a definition with its scored actual, if one exists.
type KpiResult struct {
	Definition kpi.Definition `json:"definition"`
	Actual     *kpi.Actual    `json:"actual,omitempty"`
}

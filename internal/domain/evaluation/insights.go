package evaluation

import (
	"fmt"

	"kpm/internal/domain/scoring"
)

const (
	InsightOverall     = "overall"
	InsightStrength    = "strength"
	InsightImprovement = "improvement"
	InsightCoverage    = "coverage"
)

type Insight struct {
	Type    string `json:"type"`
	KpiID   string `json:"kpiId,omitempty"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message"`
}

// Insights derives narrative findings from an aggregated evaluation: an
// overall band statement, one strength per KPI at or above the exceptional
// threshold, one improvement per KPI below target band, and a coverage
// warning when reported weights fall short of 100.
func Insights(summary scoring.Summary, results []KpiResult) []Insight {
	band := scoring.Band(summary.OverallPercentage)
	out := []Insight{{
		Type: InsightOverall,
		Message: fmt.Sprintf("Overall achievement %.2f%% (%s): %s",
			summary.OverallPercentage, band.Label, band.Description),
	}}

	for _, r := range results {
		if r.Actual == nil {
			continue
		}
		switch {
		case r.Actual.Percentage >= 120:
			out = append(out, Insight{
				Type:  InsightStrength,
				KpiID: r.Definition.ID,
				Title: r.Definition.Title,
				Message: fmt.Sprintf("%s reached %.2f%% of target, well above expectations",
					r.Definition.Title, r.Actual.Percentage),
			})
		case r.Actual.Percentage < 80:
			out = append(out, Insight{
				Type:  InsightImprovement,
				KpiID: r.Definition.ID,
				Title: r.Definition.Title,
				Message: fmt.Sprintf("%s achieved %.2f%% of target and needs attention",
					r.Definition.Title, r.Actual.Percentage),
			})
		}
	}

	if summary.TotalWeight < 100 {
		out = append(out, Insight{
			Type: InsightCoverage,
			Message: fmt.Sprintf("Results cover only %.0f%% of total KPI weight; missing actuals reduce the overall score",
				summary.TotalWeight),
		})
	}

	return out
}

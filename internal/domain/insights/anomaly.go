package insights

import "fmt"

const (
	AnomalySuddenDrop  = "sudden_drop"
	AnomalySuddenSpike = "sudden_spike"

	SeverityHigh   = "high"
	SeverityMedium = "medium"
)

// Threshold multipliers against target. Below the drop floor is a
// high-severity anomaly, above the spike ceiling a medium one.
const (
	dropFloor    = 0.5
	spikeCeiling = 1.5
)

// Observation is one (KPI, actual) pair fed into the scan.
type Observation struct {
	KpiID       string  `json:"kpiId"`
	Title       string  `json:"title"`
	ActualValue float64 `json:"actualValue"`
	TargetValue float64 `json:"targetValue"`
}

type Anomaly struct {
	KpiID            string   `json:"kpiId"`
	AnomalyType      string   `json:"anomalyType"`
	Severity         string   `json:"severity"`
	Description      string   `json:"description"`
	SuggestedActions []string `json:"suggestedActions"`
	Confidence       float64  `json:"confidence"`
}

// DetectAnomalies applies the fixed threshold rule to each observation.
// Targets of zero are skipped; the multiplier rule has no meaning there.
func DetectAnomalies(observations []Observation) []Anomaly {
	var out []Anomaly
	for _, obs := range observations {
		if obs.TargetValue <= 0 {
			continue
		}
		if obs.ActualValue < obs.TargetValue*dropFloor {
			out = append(out, Anomaly{
				KpiID:       obs.KpiID,
				AnomalyType: AnomalySuddenDrop,
				Severity:    SeverityHigh,
				Description: fmt.Sprintf("%s has dropped significantly below target (%g vs %g)",
					obs.Title, obs.ActualValue, obs.TargetValue),
				SuggestedActions: []string{
					"Investigate root causes for performance drop",
					"Review recent changes in processes or market conditions",
					"Consider adjusting targets or implementation strategy",
				},
				Confidence: 0.85,
			})
		}
		if obs.ActualValue > obs.TargetValue*spikeCeiling {
			out = append(out, Anomaly{
				KpiID:       obs.KpiID,
				AnomalyType: AnomalySuddenSpike,
				Severity:    SeverityMedium,
				Description: fmt.Sprintf("%s has exceeded target significantly (%g vs %g)",
					obs.Title, obs.ActualValue, obs.TargetValue),
				SuggestedActions: []string{
					"Analyze factors contributing to exceptional performance",
					"Consider if targets need adjustment for next period",
					"Document best practices for replication",
				},
				Confidence: 0.78,
			})
		}
	}
	return out
}

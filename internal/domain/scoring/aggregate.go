package scoring

import (
	"fmt"
	"math"
)

// WeightedKpi is the slice of a KPI definition the aggregation needs.
// Weight is in percentage points; a user's definitions for one cycle are
// expected to sum to 100.
type WeightedKpi struct {
	ID     string
	Title  string
	Weight float64
}

// ScoredActual is one computed achievement matched to a definition by KpiID.
type ScoredActual struct {
	KpiID       string
	ActualValue float64
	Percentage  float64
	Score       int
}

// Summary is the weighted overall result for one user and cycle.
// TotalWeight below 100 signals an incomplete evaluation; callers must
// surface it rather than treat the average as final.
type Summary struct {
	OverallScore      float64 `json:"overallScore"`
	OverallPercentage float64 `json:"overallPercentage"`
	TotalWeight       float64 `json:"totalWeight"`
}

// Aggregate folds scored actuals into a weighted summary. Definitions
// without a matching actual contribute nothing, including to TotalWeight.
func Aggregate(definitions []WeightedKpi, actuals []ScoredActual) Summary {
	byKpi := make(map[string]ScoredActual, len(actuals))
	for _, actual := range actuals {
		byKpi[actual.KpiID] = actual
	}

	var summary Summary
	for _, def := range definitions {
		actual, ok := byKpi[def.ID]
		if !ok {
			continue
		}
		summary.OverallScore += float64(actual.Score) * def.Weight / 100
		summary.OverallPercentage += actual.Percentage * def.Weight / 100
		summary.TotalWeight += def.Weight
	}

	summary.OverallScore = round2(summary.OverallScore)
	summary.OverallPercentage = round2(summary.OverallPercentage)
	return summary
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// ValidateWeights reports whether the definitions' weights sum to exactly
// 100. The source system used exact equality; weights are authored as whole
// percentage points, so no epsilon is applied.
func ValidateWeights(definitions []WeightedKpi) bool {
	total := 0.0
	for _, def := range definitions {
		total += def.Weight
	}
	return total == 100
}

// ValidationResult collects every rule an evaluation set breaks.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// ValidateEvaluation checks a full evaluation set, collecting all failures
// instead of stopping at the first.
func ValidateEvaluation(definitions []WeightedKpi, actuals []ScoredActual) ValidationResult {
	var errs []string

	byKpi := make(map[string]ScoredActual, len(actuals))
	for _, actual := range actuals {
		byKpi[actual.KpiID] = actual
	}

	missing := 0
	for _, def := range definitions {
		if _, ok := byKpi[def.ID]; !ok {
			missing++
		}
	}
	if missing > 0 {
		errs = append(errs, fmt.Sprintf("missing actual values for %d KPI(s)", missing))
	}

	titles := make(map[string]string, len(definitions))
	totalWeight := 0.0
	for _, def := range definitions {
		titles[def.ID] = def.Title
		totalWeight += def.Weight
	}

	for _, actual := range actuals {
		if actual.ActualValue < 0 {
			title := titles[actual.KpiID]
			if title == "" {
				title = actual.KpiID
			}
			errs = append(errs, fmt.Sprintf("actual value for %q cannot be negative", title))
		}
	}

	if totalWeight != 100 {
		errs = append(errs, fmt.Sprintf("total KPI weight must equal 100%%, got %v", totalWeight))
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

package scoring

import (
	"strings"
	"testing"
)

func TestAggregateWeighted(t *testing.T) {
	definitions := []WeightedKpi{
		{ID: "k1", Title: "Revenue growth", Weight: 40},
		{ID: "k2", Title: "NCR cases", Weight: 60},
	}
	actuals := []ScoredActual{
		{KpiID: "k1", Percentage: 120, Score: 5},
		{KpiID: "k2", Percentage: 80, Score: 3},
	}

	summary := Aggregate(definitions, actuals)
	if summary.TotalWeight != 100 {
		t.Fatalf("expected total weight 100, got %v", summary.TotalWeight)
	}
	if summary.OverallPercentage != 96 {
		t.Fatalf("expected overall percentage 96, got %v", summary.OverallPercentage)
	}
	if summary.OverallScore != 3.8 {
		t.Fatalf("expected overall score 3.8, got %v", summary.OverallScore)
	}
}

func TestAggregateSkipsMissingActuals(t *testing.T) {
	definitions := []WeightedKpi{
		{ID: "k1", Weight: 25},
		{ID: "k2", Weight: 30},
		{ID: "k3", Weight: 20},
	}
	actuals := []ScoredActual{
		{KpiID: "k1", Percentage: 100, Score: 4},
		{KpiID: "k2", Percentage: 90, Score: 3},
	}

	summary := Aggregate(definitions, actuals)
	if summary.TotalWeight != 55 {
		t.Fatalf("expected covered weight 55, got %v", summary.TotalWeight)
	}
}

func TestAggregateWeightLinearity(t *testing.T) {
	definitions := []WeightedKpi{
		{ID: "a", Weight: 20},
		{ID: "b", Weight: 30},
	}
	actuals := []ScoredActual{
		{KpiID: "a", Percentage: 110, Score: 4},
		{KpiID: "b", Percentage: 70, Score: 2},
	}

	base := Aggregate(definitions, actuals)

	doubled := []WeightedKpi{
		{ID: "a", Weight: 40},
		{ID: "b", Weight: 60},
	}
	scaled := Aggregate(doubled, actuals)

	if scaled.OverallPercentage != base.OverallPercentage*2 {
		t.Fatalf("weighted percentage must scale linearly: %v vs %v", scaled.OverallPercentage, base.OverallPercentage)
	}
	if scaled.TotalWeight != base.TotalWeight*2 {
		t.Fatalf("total weight must scale linearly: %v vs %v", scaled.TotalWeight, base.TotalWeight)
	}
}

func TestAggregateRoundsToTwoDecimals(t *testing.T) {
	definitions := []WeightedKpi{{ID: "k", Weight: 33}}
	actuals := []ScoredActual{{KpiID: "k", Percentage: 100.0 / 3, Score: 1}}

	summary := Aggregate(definitions, actuals)
	if summary.OverallPercentage != 11 {
		t.Fatalf("expected 11.00 after rounding, got %v", summary.OverallPercentage)
	}
	if summary.OverallScore != 0.33 {
		t.Fatalf("expected 0.33 after rounding, got %v", summary.OverallScore)
	}
}

func TestValidateWeights(t *testing.T) {
	ok := ValidateWeights([]WeightedKpi{{Weight: 40}, {Weight: 35}, {Weight: 25}})
	if !ok {
		t.Fatal("expected weights summing to 100 to validate")
	}
	if ValidateWeights([]WeightedKpi{{Weight: 40}, {Weight: 40}}) {
		t.Fatal("expected weights summing to 80 to fail")
	}
	if ValidateWeights(nil) {
		t.Fatal("expected empty set to fail")
	}
}

func TestValidateEvaluationCollectsAllErrors(t *testing.T) {
	definitions := []WeightedKpi{
		{ID: "k1", Title: "Revenue", Weight: 25},
		{ID: "k2", Title: "Retention", Weight: 30},
		{ID: "k3", Title: "Milestones", Weight: 20},
	}
	actuals := []ScoredActual{
		{KpiID: "k1", ActualValue: 10, Percentage: 100, Score: 4},
		{KpiID: "k2", ActualValue: -5, Percentage: 0, Score: 1},
	}

	result := ValidateEvaluation(definitions, actuals)
	if result.IsValid {
		t.Fatal("expected invalid evaluation")
	}
	if len(result.Errors) != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", len(result.Errors), result.Errors)
	}

	joined := strings.Join(result.Errors, "; ")
	if !strings.Contains(joined, "missing actual values for 1 KPI(s)") {
		t.Fatalf("expected missing-actual error, got %v", result.Errors)
	}
	if !strings.Contains(joined, "Retention") {
		t.Fatalf("expected negative-value error to name the KPI, got %v", result.Errors)
	}
	if !strings.Contains(joined, "100%") {
		t.Fatalf("expected weight-sum error, got %v", result.Errors)
	}
}

func TestValidateEvaluationValidSet(t *testing.T) {
	definitions := []WeightedKpi{
		{ID: "k1", Weight: 50},
		{ID: "k2", Weight: 50},
	}
	actuals := []ScoredActual{
		{KpiID: "k1", ActualValue: 12, Percentage: 100, Score: 4},
		{KpiID: "k2", ActualValue: 3, Percentage: 120, Score: 5},
	}

	result := ValidateEvaluation(definitions, actuals)
	if !result.IsValid || len(result.Errors) != 0 {
		t.Fatalf("expected valid evaluation, got %+v", result)
	}
}

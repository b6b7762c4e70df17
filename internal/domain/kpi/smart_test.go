package kpi

import (
	"testing"

	"kpm/internal/domain/scoring"
)

func TestCheckSmartFullMarks(t *testing.T) {
	result := CheckSmart(Definition{
		Title:      "Reduce internal NCR cases",
		Type:       scoring.TypeQuantLowerBetter,
		Unit:       "cases",
		Target:     12,
		DataSource: "eQMS",
	})
	if result.Score != 100 {
		t.Fatalf("expected 100, got %d (issues: %v)", result.Score, result.Issues)
	}
	if len(result.Issues) != 0 {
		t.Fatalf("expected no issues, got %v", result.Issues)
	}
}

func TestCheckSmartFlagsGaps(t *testing.T) {
	result := CheckSmart(Definition{Title: "Sales"})
	// Only the time-bound criterion passes.
	if result.Score != 20 {
		t.Fatalf("expected 20, got %d", result.Score)
	}
	if len(result.Issues) != 4 {
		t.Fatalf("expected 4 issues, got %v", result.Issues)
	}
	if len(result.Suggestions) != len(result.Issues) {
		t.Fatalf("each issue needs a suggestion: %v vs %v", result.Issues, result.Suggestions)
	}
}

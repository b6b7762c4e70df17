package scoring

import (
	"errors"
	"testing"
)

func TestPercentageQuantHigherBetter(t *testing.T) {
	pct, err := Percentage(TypeQuantHigherBetter, 18, 15)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pct != 120 {
		t.Fatalf("expected 120, got %v", pct)
	}
	if Score(pct) != 5 {
		t.Fatalf("expected score 5, got %d", Score(pct))
	}

	pct, err = Percentage(TypeQuantHigherBetter, 100, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pct != 150 {
		t.Fatalf("expected over-achievement capped at 150, got %v", pct)
	}
}

func TestPercentageQuantLowerBetter(t *testing.T) {
	pct, err := Percentage(TypeQuantLowerBetter, 12, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pct != 100 {
		t.Fatalf("expected 100, got %v", pct)
	}
	if Score(pct) != 4 {
		t.Fatalf("expected score 4, got %d", Score(pct))
	}

	pct, err = Percentage(TypeQuantLowerBetter, 0, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pct != 150 {
		t.Fatalf("expected 150 for zero actual, got %v", pct)
	}
	if Score(pct) != 5 {
		t.Fatalf("expected score 5, got %d", Score(pct))
	}

	pct, err = Percentage(TypeQuantLowerBetter, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pct != 100 {
		t.Fatalf("expected 100 for zero target and zero actual, got %v", pct)
	}

	pct, err = Percentage(TypeQuantLowerBetter, 24, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pct != 50 {
		t.Fatalf("expected 50, got %v", pct)
	}
}

func TestPercentageMilestoneUncapped(t *testing.T) {
	pct, err := Percentage(TypeMilestone, 10, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pct != 200 {
		t.Fatalf("expected milestone percentage uncapped at 200, got %v", pct)
	}
}

func TestPercentageBoolean(t *testing.T) {
	for _, tc := range []struct {
		actual float64
		want   float64
	}{
		{0, 0},
		{1, 100},
		{3, 100},
	} {
		pct, err := Percentage(TypeBoolean, tc.actual, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pct != tc.want {
			t.Fatalf("boolean actual %v: expected %v, got %v", tc.actual, tc.want, pct)
		}
	}
}

func TestPercentageBehavior(t *testing.T) {
	pct, err := Percentage(TypeBehavior, 4, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pct != 80 {
		t.Fatalf("expected 80, got %v", pct)
	}

	pct, err = Percentage(TypeBehavior, 5, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pct != 100 {
		t.Fatalf("expected 100, got %v", pct)
	}
}

func TestPercentageUnknownType(t *testing.T) {
	_, err := Percentage(KpiType("QUALITATIVE"), 1, 1)
	if !errors.Is(err, ErrUnknownKpiType) {
		t.Fatalf("expected ErrUnknownKpiType, got %v", err)
	}
}

func TestPercentageInvalidTarget(t *testing.T) {
	if _, err := Percentage(TypeQuantHigherBetter, 10, 0); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
	if _, err := Percentage(TypeMilestone, 3, 0); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
}

func TestPercentageBounds(t *testing.T) {
	cases := []struct {
		kind   KpiType
		actual float64
		target float64
	}{
		{TypeQuantHigherBetter, 0, 10},
		{TypeQuantHigherBetter, 5, 10},
		{TypeQuantHigherBetter, 1000, 10},
		{TypeQuantLowerBetter, 0, 0},
		{TypeQuantLowerBetter, 0, 10},
		{TypeQuantLowerBetter, 1, 10},
		{TypeQuantLowerBetter, 100, 10},
		{TypeBoolean, 0, 1},
		{TypeBoolean, 1, 1},
		{TypeBehavior, 1, 5},
		{TypeBehavior, 5, 5},
	}
	for _, tc := range cases {
		pct, err := Percentage(tc.kind, tc.actual, tc.target)
		if err != nil {
			t.Fatalf("%s actual=%v target=%v: unexpected error: %v", tc.kind, tc.actual, tc.target, err)
		}
		if pct < 0 {
			t.Fatalf("%s actual=%v target=%v: negative percentage %v", tc.kind, tc.actual, tc.target, pct)
		}
		if (tc.kind == TypeQuantHigherBetter || tc.kind == TypeQuantLowerBetter) && pct > PercentageCap {
			t.Fatalf("%s actual=%v target=%v: percentage %v above cap", tc.kind, tc.actual, tc.target, pct)
		}
		if tc.kind == TypeBoolean && pct != 0 && pct != 100 {
			t.Fatalf("boolean percentage must be 0 or 100, got %v", pct)
		}
		if tc.kind == TypeBehavior && (pct < 0 || pct > 100) {
			t.Fatalf("behavior percentage out of range: %v", pct)
		}
	}
}

func TestScoreBoundaries(t *testing.T) {
	cases := []struct {
		pct  float64
		want int
	}{
		{0, 1},
		{59.9, 1},
		{60, 2},
		{79.9, 2},
		{80, 3},
		{99.9, 3},
		{100, 4},
		{119.9, 4},
		{120, 5},
		{150, 5},
	}
	for _, tc := range cases {
		if got := Score(tc.pct); got != tc.want {
			t.Fatalf("percentage %v: expected score %d, got %d", tc.pct, tc.want, got)
		}
	}
}

func TestEvaluate(t *testing.T) {
	pct, score, err := Evaluate(TypeQuantHigherBetter, 18, 15)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pct != 120 || score != 5 {
		t.Fatalf("expected (120, 5), got (%v, %d)", pct, score)
	}

	if _, _, err := Evaluate(KpiType("bogus"), 1, 1); !errors.Is(err, ErrUnknownKpiType) {
		t.Fatalf("expected ErrUnknownKpiType, got %v", err)
	}
}

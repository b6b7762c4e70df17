package scoring

import (
	"errors"
	"fmt"
)

// KpiType selects the achievement formula for a KPI.
type KpiType string

const (
	TypeQuantHigherBetter KpiType = "QUANT_HIGHER_BETTER"
	TypeQuantLowerBetter  KpiType = "QUANT_LOWER_BETTER"
	TypeMilestone         KpiType = "MILESTONE"
	TypeBoolean           KpiType = "BOOLEAN"
	TypeBehavior          KpiType = "BEHAVIOR"
)

// Cap for over-achievement on the quantitative types. Milestone counts are
// deliberately uncapped.
const PercentageCap = 150.0

var (
	ErrUnknownKpiType = errors.New("unknown kpi type")
	ErrInvalidTarget  = errors.New("target must be positive")
)

var kpiTypes = map[KpiType]bool{
	TypeQuantHigherBetter: true,
	TypeQuantLowerBetter:  true,
	TypeMilestone:         true,
	TypeBoolean:           true,
	TypeBehavior:          true,
}

func ValidKpiType(t KpiType) bool {
	return kpiTypes[t]
}

// Percentage converts a reported actual into an achievement percentage for
// the given KPI type. Target must be positive except for QUANT_LOWER_BETTER,
// where a zero target with a zero actual counts as fully met.
func Percentage(t KpiType, actual, target float64) (float64, error) {
	switch t {
	case TypeQuantHigherBetter:
		if target <= 0 {
			return 0, fmt.Errorf("%w: got %v", ErrInvalidTarget, target)
		}
		return min(actual/target*100, PercentageCap), nil

	case TypeQuantLowerBetter:
		// Lower is better. Zero defects against a zero target is exactly
		// met; zero against a positive target is the best possible outcome.
		if actual == 0 && target == 0 {
			return 100, nil
		}
		if actual == 0 && target > 0 {
			return PercentageCap, nil
		}
		return min(target/actual*100, PercentageCap), nil

	case TypeMilestone:
		if target <= 0 {
			return 0, fmt.Errorf("%w: got %v", ErrInvalidTarget, target)
		}
		return actual / target * 100, nil

	case TypeBoolean:
		if actual > 0 {
			return 100, nil
		}
		return 0, nil

	case TypeBehavior:
		// Actual is itself a 1-5 rating.
		return actual / 5 * 100, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownKpiType, t)
}

// Score maps an achievement percentage onto the 1-5 scale. Band boundaries
// are shared with Band and must stay in sync with it.
func Score(percentage float64) int {
	switch {
	case percentage >= 120:
		return 5
	case percentage >= 100:
		return 4
	case percentage >= 80:
		return 3
	case percentage >= 60:
		return 2
	default:
		return 1
	}
}

// Evaluate computes both percentage and score for one reported actual.
func Evaluate(t KpiType, actual, target float64) (float64, int, error) {
	percentage, err := Percentage(t, actual, target)
	if err != nil {
		return 0, 0, err
	}
	return percentage, Score(percentage), nil
}

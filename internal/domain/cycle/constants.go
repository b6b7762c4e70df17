package cycle

const (
	StatusDraft  = "DRAFT"
	StatusActive = "ACTIVE"
	StatusClosed = "CLOSED"
)

const (
	PeriodYearly     = "YEARLY"
	PeriodSemiAnnual = "SEMI_ANNUAL"
	PeriodQuarterly  = "QUARTERLY"
)

func ValidPeriodType(periodType string) bool {
	switch periodType {
	case PeriodYearly, PeriodSemiAnnual, PeriodQuarterly:
		return true
	}
	return false
}

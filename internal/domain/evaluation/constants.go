package evaluation

const (
	StatusDraft       = "DRAFT"
	StatusSubmitted   = "SUBMITTED"
	StatusUnderReview = "UNDER_REVIEW"
	StatusCompleted   = "COMPLETED"
)

// Calibration adjustments are bounded so a reviewer can nudge a score, not
// rewrite it.
const MaxCalibration = 1.0

const (
	MinFinalScore = 1.0
	MaxFinalScore = 5.0
)

package kpi

// KPI definition lifecycle. PENDING_* statuses track which approval level
// the definition is waiting on; LOCKED_* statuses are applied when the
// owning cycle closes.
const (
	StatusDraft         = "DRAFT"
	StatusSubmitted     = "SUBMITTED"
	StatusPendingLM     = "PENDING_LM"
	StatusPendingHOD    = "PENDING_HOD"
	StatusPendingBOD    = "PENDING_BOD"
	StatusApproved      = "APPROVED"
	StatusRejected      = "REJECTED"
	StatusLockedGoals   = "LOCKED_GOALS"
	StatusLockedActuals = "LOCKED_ACTUALS"
)

const (
	ActualStatusSubmitted  = "SUBMITTED"
	ActualStatusSuperseded = "SUPERSEDED"
	ActualStatusLocked     = "LOCKED_ACTUALS"
)

// PendingStatusForLevel maps an approval level onto the KPI status that
// signals the definition is waiting at that level.
func PendingStatusForLevel(level int) string {
	switch level {
	case 1:
		return StatusPendingLM
	case 2:
		return StatusPendingHOD
	case 3:
		return StatusPendingBOD
	}
	return StatusSubmitted
}

// Editable reports whether the owner may still change the definition.
func Editable(status string) bool {
	return status == StatusDraft || status == StatusRejected
}

package notifications

const (
	TypeGoalsSubmitted      = "goals_submitted"
	TypeApprovalRequested   = "approval_requested"
	TypeGoalApproved        = "goal_approved"
	TypeGoalRejected        = "goal_rejected"
	TypeActualSubmitted     = "actual_submitted"
	TypeEvaluationSubmitted = "evaluation_submitted"
	TypeEvaluationCompleted = "evaluation_completed"
	TypeCycleActivated      = "cycle_activated"
	TypeCycleClosed         = "cycle_closed"
)

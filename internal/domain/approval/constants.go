package approval

// Decision status for one (kpi, level) record.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// The three sequential sign-off levels.
const (
	LevelLineManager = 1
	LevelHeadOfDept  = 2
	LevelBoard       = 3

	MaxLevel = 3
)

func LevelLabel(level int) string {
	switch level {
	case LevelLineManager:
		return "Level 1 - Line Manager"
	case LevelHeadOfDept:
		return "Level 2 - Head of Department"
	case LevelBoard:
		return "Level 3 - Board of Directors"
	}
	return "Unknown Level"
}

func ValidLevel(level int) bool {
	return level >= LevelLineManager && level <= LevelBoard
}

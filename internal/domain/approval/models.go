package approval

import "time"

// Decision is one approval record for one (KPI, level) pair. At most one
// live record exists per pair; superseded records survive for history.
type Decision struct {
	ID         string     `json:"id"`
	KpiID      string     `json:"kpiDefinitionId"`
	Level      int        `json:"level"`
	ApproverID string     `json:"approverId"`
	Status     string     `json:"status"`
	Comment    string     `json:"comment,omitempty"`
	DecidedAt  *time.Time `json:"decidedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Workflow is the derived view over a KPI's decision records. It is never
// stored; ComputeWorkflow rebuilds it on demand.
type Workflow struct {
	KpiID        string    `json:"kpiId"`
	CurrentLevel int       `json:"currentLevel,omitempty"`
	Level1       *Decision `json:"level1,omitempty"`
	Level2       *Decision `json:"level2,omitempty"`
	Level3       *Decision `json:"level3,omitempty"`
	IsComplete   bool      `json:"isComplete"`
	FinalStatus  string    `json:"finalStatus"`
}

// Decision returns the record at the given level, or nil.
func (w Workflow) Decision(level int) *Decision {
	switch level {
	case LevelLineManager:
		return w.Level1
	case LevelHeadOfDept:
		return w.Level2
	case LevelBoard:
		return w.Level3
	}
	return nil
}

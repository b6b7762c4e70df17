package approval

// ComputeWorkflow derives the current workflow state from a KPI's decision
// records. Levels are strictly sequential: a missing or PENDING record at a
// level parks the workflow there, a rejection at any level is terminal no
// matter what stray higher-level records claim. The function has no side
// effects and is safe to call repeatedly from concurrent readers.
func ComputeWorkflow(kpiID string, decisions []Decision) Workflow {
	workflow := Workflow{KpiID: kpiID, FinalStatus: StatusPending}

	levels := [MaxLevel + 1]*Decision{}
	for i := range decisions {
		decision := decisions[i]
		if decision.KpiID != kpiID || !ValidLevel(decision.Level) {
			continue
		}
		levels[decision.Level] = &decision
	}
	workflow.Level1 = levels[LevelLineManager]
	workflow.Level2 = levels[LevelHeadOfDept]
	workflow.Level3 = levels[LevelBoard]

	for level := LevelLineManager; level <= LevelBoard; level++ {
		decision := levels[level]
		if decision == nil || decision.Status == StatusPending {
			workflow.CurrentLevel = level
			return workflow
		}
		if decision.Status == StatusRejected {
			workflow.FinalStatus = StatusRejected
			workflow.IsComplete = true
			return workflow
		}
	}

	// All three levels approved.
	workflow.FinalStatus = StatusApproved
	workflow.IsComplete = true
	return workflow
}

package reports

// Filter narrows report output. Empty fields match everything; a zero
// score bound is treated as unset, since computed scores start at 1.
type Filter struct {
	CycleID   string  `json:"cycleId"`
	OrgUnitID string  `json:"orgUnitId"`
	UserID    string  `json:"userId"`
	Role      string  `json:"role"`
	ScoreMin  float64 `json:"scoreMin"`
	ScoreMax  float64 `json:"scoreMax"`
}

// Row is one employee's line in the performance report.
type Row struct {
	UserID            string  `json:"userId"`
	Name              string  `json:"name"`
	Role              string  `json:"role"`
	OrgUnitID         string  `json:"orgUnitId"`
	OrgUnitName       string  `json:"orgUnitName"`
	KpiCount          int     `json:"kpiCount"`
	ReportedKpis      int     `json:"reportedKpis"`
	OverallScore      float64 `json:"overallScore"`
	OverallPercentage float64 `json:"overallPercentage"`
	EvaluationStatus  string  `json:"evaluationStatus,omitempty"`
}

// Summary is the headline block of the report.
type Summary struct {
	TotalEmployees int     `json:"totalEmployees"`
	TotalKpis      int     `json:"totalKpis"`
	AverageScore   float64 `json:"averageScore"`
	CompletionRate float64 `json:"completionRate"`
}

// DepartmentBreakdown aggregates rows per org unit.
type DepartmentBreakdown struct {
	OrgUnitID      string  `json:"orgUnitId"`
	OrgUnitName    string  `json:"orgUnitName"`
	Headcount      int     `json:"headcount"`
	KpiCount       int     `json:"kpiCount"`
	AverageScore   float64 `json:"averageScore"`
	CompletionRate float64 `json:"completionRate"`
}

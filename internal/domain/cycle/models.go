package cycle

import "time"

// Cycle is one performance period. Goal setting and actual reporting both
// happen inside a cycle; closing it freezes everything recorded in it.
type Cycle struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	PeriodType string     `json:"periodType"`
	StartDate  time.Time  `json:"startDate"`
	EndDate    time.Time  `json:"endDate"`
	Status     string     `json:"status"`
	CreatedBy  string     `json:"createdBy"`
	CreatedAt  time.Time  `json:"createdAt"`
	ClosedAt   *time.Time `json:"closedAt,omitempty"`
}

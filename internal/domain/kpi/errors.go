package kpi

import "errors"

var (
	ErrNotFound          = errors.New("kpi definition not found")
	ErrActualNotFound    = errors.New("kpi actual not found")
	ErrNotEditable       = errors.New("kpi definition can no longer be edited")
	ErrNotApproved       = errors.New("kpi definition is not approved for actuals")
	ErrNegativeActual    = errors.New("actual value cannot be negative")
	ErrInvalidWeight     = errors.New("weight must be between 0 and 100")
	ErrWeightSum         = errors.New("total KPI weight must equal 100")
	ErrNothingToSubmit   = errors.New("no draft KPI definitions to submit")
	ErrTemplateNotFound  = errors.New("kpi template not found")
	ErrEvidenceNotFound  = errors.New("evidence file not found")
	ErrBehaviorOutOfBand = errors.New("behavior actual must be a rating between 1 and 5")
)

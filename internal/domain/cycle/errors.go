package cycle

import "errors"

var (
	ErrNotFound          = errors.New("cycle not found")
	ErrNameRequired      = errors.New("cycle name is required")
	ErrInvalidPeriod     = errors.New("cycle end date must be after start date")
	ErrInvalidPeriodType = errors.New("invalid cycle period type")
	ErrNotDraft          = errors.New("cycle is not in DRAFT status")
	ErrNotActive         = errors.New("cycle is not in ACTIVE status")
	ErrAlreadyClosed     = errors.New("cycle is already closed")
	ErrActiveExists      = errors.New("another cycle is already active")
)

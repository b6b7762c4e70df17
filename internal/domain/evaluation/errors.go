package evaluation

import "errors"

var (
	ErrNotFound          = errors.New("evaluation not found")
	ErrInvalid           = errors.New("evaluation is not valid for submission")
	ErrNotDraft          = errors.New("evaluation is not in DRAFT status")
	ErrNotSubmitted      = errors.New("evaluation is not in SUBMITTED status")
	ErrNotUnderReview    = errors.New("evaluation is not in UNDER_REVIEW status")
	ErrSelfReview        = errors.New("users cannot review their own evaluation")
	ErrCalibrationBounds = errors.New("calibration adjustment out of bounds")
	ErrNoApprovedKpis    = errors.New("user has no approved KPIs in this cycle")
)

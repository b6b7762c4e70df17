package approval

import "errors"

var (
	ErrNoApprover      = errors.New("no approver resolvable for level")
	ErrNotPendingLevel = errors.New("kpi is not pending at this level")
	ErrLevelDecided    = errors.New("approval level already decided")
	ErrNotAuthorized   = errors.New("user is not the required approver")
	ErrCommentRequired = errors.New("rejection requires a comment")
	ErrDecisionInvalid = errors.New("decision must be APPROVED or REJECTED")
	ErrNotFound        = errors.New("approval record not found")
)

package approval

import (
	"fmt"

	"kpm/internal/domain/directory"
)

// ResolveApprover finds the user required to sign off the given level for
// the KPI owner: the owner's manager, the manager's manager, then the first
// active board member. Resolution is a pure lookup over the chart, so a
// fixed chart always yields the same approver.
func ResolveApprover(ownerID string, level int, chart *directory.Chart) (directory.User, error) {
	switch level {
	case LevelLineManager:
		manager, ok := chart.Manager(ownerID)
		if !ok {
			return directory.User{}, fmt.Errorf("%w: owner %s has no manager", ErrNoApprover, ownerID)
		}
		return manager, nil

	case LevelHeadOfDept:
		manager, ok := chart.Manager(ownerID)
		if !ok {
			return directory.User{}, fmt.Errorf("%w: owner %s has no manager", ErrNoApprover, ownerID)
		}
		head, ok := chart.Manager(manager.ID)
		if !ok {
			return directory.User{}, fmt.Errorf("%w: manager %s has no manager", ErrNoApprover, manager.ID)
		}
		return head, nil

	case LevelBoard:
		member, ok := chart.FirstBoardMember()
		if !ok {
			return directory.User{}, fmt.Errorf("%w: no active board member", ErrNoApprover)
		}
		return member, nil
	}

	return directory.User{}, fmt.Errorf("%w: invalid level %d", ErrNoApprover, level)
}

// CanApprove reports whether userID is the required approver for the given
// owner and level. Callers re-check this when a decision is recorded, not
// just when the action is rendered.
func CanApprove(userID, ownerID string, level int, chart *directory.Chart) bool {
	approver, err := ResolveApprover(ownerID, level, chart)
	if err != nil {
		return false
	}
	return approver.ID == userID
}

package directory

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrOrgUnitNotFound = errors.New("org unit not found")
)

package directory

type Role string

const (
	RoleHR          Role = "HR"
	RoleAdmin       Role = "ADMIN"
	RoleStaff       Role = "STAFF"
	RoleLineManager Role = "LINE_MANAGER"
	RoleHeadOfDept  Role = "HEAD_OF_DEPT"
	RoleBOD         Role = "BOD"
)

const (
	UserStatusActive   = "ACTIVE"
	UserStatusInactive = "INACTIVE"
)

var Roles = []Role{RoleHR, RoleAdmin, RoleStaff, RoleLineManager, RoleHeadOfDept, RoleBOD}

func ValidRole(r Role) bool {
	for _, role := range Roles {
		if role == r {
			return true
		}
	}
	return false
}

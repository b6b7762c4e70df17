package auth

import (
	"context"

	"kpm/internal/domain/directory"
)

const (
	PermUsersRead       = "directory.users.read"
	PermUsersWrite      = "directory.users.write"
	PermOrgRead         = "directory.org.read"
	PermOrgWrite        = "directory.org.write"
	PermCyclesRead      = "cycles.read"
	PermCyclesManage    = "cycles.manage"
	PermKpisRead        = "kpis.read"
	PermKpisWrite       = "kpis.write"
	PermKpisSubmit      = "kpis.submit"
	PermActualsWrite    = "kpis.actuals.write"
	PermApprovalsDecide = "approvals.decide"
	PermEvaluationsRead = "evaluations.read"
	PermEvaluationsSelf = "evaluations.self"
	PermEvaluationsRev  = "evaluations.review"
	PermReportsRead     = "reports.read"
	PermReportsExport   = "reports.export"
	PermInsightsRead    = "insights.read"
	PermAuditRead       = "audit.read"
	PermSystemAdmin     = "admin.system"
)

var staffPermissions = []string{
	PermUsersRead,
	PermOrgRead,
	PermCyclesRead,
	PermKpisRead,
	PermKpisWrite,
	PermKpisSubmit,
	PermActualsWrite,
	PermEvaluationsRead,
	PermEvaluationsSelf,
	PermInsightsRead,
}

var managerPermissions = append(append([]string{}, staffPermissions...),
	PermApprovalsDecide,
	PermEvaluationsRev,
	PermReportsRead,
)

var RolePermissions = map[directory.Role][]string{
	directory.RoleStaff:       staffPermissions,
	directory.RoleLineManager: managerPermissions,
	directory.RoleHeadOfDept:  managerPermissions,
	directory.RoleBOD: {
		PermUsersRead,
		PermOrgRead,
		PermCyclesRead,
		PermKpisRead,
		PermApprovalsDecide,
		PermEvaluationsRead,
		PermReportsRead,
		PermReportsExport,
	},
	directory.RoleHR: {
		PermUsersRead,
		PermUsersWrite,
		PermOrgRead,
		PermOrgWrite,
		PermCyclesRead,
		PermCyclesManage,
		PermKpisRead,
		PermEvaluationsRead,
		PermEvaluationsRev,
		PermReportsRead,
		PermReportsExport,
		PermInsightsRead,
		PermAuditRead,
	},
	directory.RoleAdmin: {
		PermSystemAdmin,
	},
}

// Permissions is the static role-to-permission lookup. Roles are a fixed
// enum, so no table backs this; the zero value is ready to use.
type Permissions struct{}

func (Permissions) HasPermission(_ context.Context, role, permission string) (bool, error) {
	for _, p := range RolePermissions[directory.Role(role)] {
		if p == permission || p == PermSystemAdmin {
			return true, nil
		}
	}
	return false, nil
}

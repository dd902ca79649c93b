package auth

import (
	"context"
	"strings"
)

const (
	RoleClerk      = "clerk"
	RoleSupervisor = "supervisor"
	RolePayroll    = "payroll"
	RoleAdmin      = "admin"
)

const (
	PermAttendanceRead    = "attendance.read"
	PermAttendanceImport  = "attendance.import"
	PermAttendanceEdit    = "attendance.edit"
	PermAttendanceApprove = "attendance.approve"
	PermAuditRead         = "audit.read"
)

var DefaultPermissions = []string{
	PermAttendanceRead,
	PermAttendanceImport,
	PermAttendanceEdit,
	PermAttendanceApprove,
	PermAuditRead,
}

var RolePermissions = map[string][]string{
	RoleClerk: {
		PermAttendanceRead,
		PermAttendanceImport,
	},
	RoleSupervisor: {
		PermAttendanceRead,
		PermAttendanceImport,
		PermAttendanceEdit,
	},
	RolePayroll: {
		PermAttendanceRead,
		PermAttendanceApprove,
		PermAuditRead,
	},
	RoleAdmin: DefaultPermissions,
}

// RoleTable answers permission checks from a fixed role map. It satisfies the
// middleware's PermissionStore.
type RoleTable map[string]map[string]struct{}

func NewRoleTable(roles map[string][]string) RoleTable {
	table := make(RoleTable, len(roles))
	for role, perms := range roles {
		set := make(map[string]struct{}, len(perms))
		for _, perm := range perms {
			set[perm] = struct{}{}
		}
		table[strings.ToLower(role)] = set
	}
	return table
}

func (t RoleTable) HasPermission(_ context.Context, role, permission string) (bool, error) {
	perms, ok := t[strings.ToLower(role)]
	if !ok {
		return false, nil
	}
	_, allowed := perms[permission]
	return allowed, nil
}

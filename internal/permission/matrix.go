// Package permission resolves role keys to permission grants and decides
// whether a grant set covers a required permission.
//
// A permission string is "resource:action". A grant may be an exact string,
// the universal wildcard "*", or "resource:*" which covers every action on
// that resource. The role table is an immutable value built once at startup.
package permission

import (
	"sort"
	"strings"

	"github.com/frahmantamala/office-hr/internal"
)

const (
	RoleMD        = "MD"
	RoleHR        = "HR"
	RoleFinance   = "FINANCE"
	RoleAdmin     = "ADMIN"
	RoleEmployee  = "EMPLOYEE"
	RoleSuperuser = "SUPERUSER"

	Wildcard = "*"
)

func employeeGrants() []string {
	return []string{
		"leaves:read",
		"leaves:write",
		"attendance:read",
		"vault:read",
		"vault:write",
		"payslip:read",
	}
}

// DefaultRoles returns a fresh copy of the built-in role table. SUPERUSER
// holds the EMPLOYEE grants; its extra power is the role rule on signup
// approvals, not a permission.
func DefaultRoles() map[string][]string {
	return map[string][]string{
		RoleMD:        {Wildcard},
		RoleHR:        {"employees:*", "leaves:*", "attendance:read"},
		RoleFinance:   {"finance:*", "payroll:*", "employees:read"},
		RoleAdmin:     {"admin:*", "employees:read", "audit:read"},
		RoleEmployee:  employeeGrants(),
		RoleSuperuser: employeeGrants(),
	}
}

// Role is a read-only view of one entry of the matrix.
type Role struct {
	Key         string   `json:"key"`
	Permissions []string `json:"permissions"`
}

type Matrix struct {
	roles      map[string][]string
	failClosed bool
}

type Option func(*Matrix)

// FailClosed makes unrecognized roles resolve to no permissions instead of
// the EMPLOYEE set.
func FailClosed() Option {
	return func(m *Matrix) {
		m.failClosed = true
	}
}

// NewMatrix copies roles; later changes to the argument are not observed.
// A nil or empty table falls back to DefaultRoles.
func NewMatrix(roles map[string][]string, opts ...Option) *Matrix {
	if len(roles) == 0 {
		roles = DefaultRoles()
	}
	m := &Matrix{roles: make(map[string][]string, len(roles))}
	for key, perms := range roles {
		cp := make([]string, len(perms))
		copy(cp, perms)
		m.roles[strings.ToUpper(key)] = cp
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Matrix) Has(role string) bool {
	_, ok := m.roles[strings.ToUpper(role)]
	return ok
}

// PermissionsFor returns the grants of role. Unknown roles get the EMPLOYEE
// set unless the matrix was built with FailClosed.
func (m *Matrix) PermissionsFor(role string) []string {
	perms, ok := m.roles[strings.ToUpper(role)]
	if !ok {
		if m.failClosed {
			return nil
		}
		perms = m.roles[RoleEmployee]
	}
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

func (m *Matrix) RoleAllows(role, required string) bool {
	return Allows(m.PermissionsFor(role), required)
}

// Require returns a Forbidden error naming the denied permission.
func (m *Matrix) Require(role, required string) error {
	if m.RoleAllows(role, required) {
		return nil
	}
	return internal.ErrPermissionDenied.WithDetails(map[string]string{"permission": required})
}

func (m *Matrix) Roles() []Role {
	out := make([]Role, 0, len(m.roles))
	for key := range m.roles {
		out = append(out, Role{Key: key, Permissions: m.PermissionsFor(key)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Allows checks exact match, then the universal wildcard, then resource
// wildcards. The first hit wins.
func Allows(permissions []string, required string) bool {
	if required == "" {
		return false
	}
	for _, perm := range permissions {
		if perm == required {
			return true
		}
	}
	for _, perm := range permissions {
		if perm == Wildcard {
			return true
		}
	}
	for _, perm := range permissions {
		if prefix, ok := strings.CutSuffix(perm, ":*"); ok && prefix != "" {
			if strings.HasPrefix(required, prefix+":") {
				return true
			}
		}
	}
	return false
}

// RequireRole is the role-equality check used where a permission string is
// not expressive enough.
func RequireRole(actual, expected string) error {
	if strings.EqualFold(actual, expected) {
		return nil
	}
	return internal.ErrRoleRequired.WithDetails(map[string]string{"role": expected})
}

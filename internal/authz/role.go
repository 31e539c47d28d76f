package authz

import "strings"

// Role is the coarse privilege tier assigned to an account.
type Role string

const (
	// RoleUser is an ordinary authenticated account.
	RoleUser Role = "USER"
	// RoleAdmin may review content and manage ordinary users.
	RoleAdmin Role = "ADMIN"
	// RoleSuperAdmin bypasses all fine-grained permission checks.
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// ParseRole normalizes a role string coming from the backend. Unknown or
// empty values map to the zero Role, which carries no privileges.
func ParseRole(raw string) Role {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleUser:
		return RoleUser
	case RoleAdmin:
		return RoleAdmin
	case RoleSuperAdmin:
		return RoleSuperAdmin
	default:
		return ""
	}
}

// Level orders roles by privilege for comparisons between accounts.
func (r Role) Level() int {
	switch r {
	case RoleUser:
		return 1
	case RoleAdmin:
		return 2
	case RoleSuperAdmin:
		return 3
	default:
		return 0
	}
}

// IsAdmin reports whether the role has at least admin privileges.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Outranks reports whether r sits strictly above other in the hierarchy.
// Acting on another administrator requires outranking them, no matter which
// permission codes the actor holds.
func (r Role) Outranks(other Role) bool {
	return r.Level() > other.Level()
}

// System reports whether the role is one of the fixed system roles that may
// never be deleted or renamed through the administration workflows.
func (r Role) System() bool {
	return r == RoleUser || r == RoleAdmin || r == RoleSuperAdmin
}

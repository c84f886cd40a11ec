package authclient

// Role is the backend's user role
type Role = string

const (
	// RoleUser is a regular vault account
	RoleUser Role = "USER"
	// RoleAdmin can additionally manage accounts
	RoleAdmin Role = "ADMIN"
)

// IsValidRole checks if the role is one of the predefined valid roles
func IsValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsAdmin checks if this role grants the admin surface
func IsAdmin(r Role) bool {
	return r == RoleAdmin
}

// IsAtLeast checks if the role meets the minimum required level
func IsAtLeast(r, minRole Role) bool {
	roleHierarchy := map[Role]int{
		RoleUser:  0,
		RoleAdmin: 1,
	}

	currentLevel, exists := roleHierarchy[r]
	if !exists {
		return false
	}

	minLevel, exists := roleHierarchy[minRole]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

// AllRoles returns the predefined roles in hierarchical order
func AllRoles() []Role {
	return []Role{RoleUser, RoleAdmin}
}

// ParseRole safely parses a string into a Role
func ParseRole(roleStr string) (Role, bool) {
	role := Role(roleStr)
	return role, IsValidRole(role)
}

package enums

import "fmt"

// Role identifies which dashboard a user belongs to.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleFarmer     Role = "farmer"
	RoleProvider   Role = "provider"
	RoleHubManager Role = "hub_manager"
	RoleAdmin      Role = "admin"
)

var validRoles = []Role{
	RoleCustomer,
	RoleFarmer,
	RoleProvider,
	RoleHubManager,
	RoleAdmin,
}

// IsValid reports whether the value matches the canonical role enum.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts the raw string to Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}

// IsReviewer reports whether the role may transition order requests.
func (r Role) IsReviewer() bool {
	return r == RoleAdmin || r == RoleHubManager
}

package model

import "fmt"

// Role tags an account as a tailor (tenant owner) or a client of a tailor
type Role string

const (
	RoleTailor Role = "tailor"
	RoleClient Role = "client"
)

// ParseRole converts a stored or token role string into a Role
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleTailor, RoleClient:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Identity is the authenticated actor every service operation receives.
// TenantID is the owning tailor's account id for both roles; CustomerID is
// set only for clients.
type Identity struct {
	UserID     uint
	TenantID   uint
	Role       Role
	CustomerID *uint
}

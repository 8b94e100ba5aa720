// Package models contains data structures for the application's domain models.
package models

// UserRole is the account role carried in auth tokens.
type UserRole string

const (
	// RoleSuperAdmin can manage admins and everything an admin can.
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
	// RoleAdmin manages travelers, plans and subscription plans.
	RoleAdmin UserRole = "ADMIN"
	// RoleTraveler is the default role for registered accounts.
	RoleTraveler UserRole = "TRAVELER"
)

// IsAdmin reports whether the role grants administrative access.
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleTraveler:
		return true
	}
	return false
}

// Identity is the authenticated caller as resolved by the auth middleware.
type Identity struct {
	UserID uint
	Email  string
	Role   UserRole
}

package domain

import "time"

// Role enumerates actor roles.
type Role string

const (
	RoleCitizen    Role = "citizen"
	RoleDepartment Role = "department"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCitizen, RoleDepartment, RoleAdmin:
		return true
	}
	return false
}

// Actor is the authenticated caller plus the ledger fields the engine maintains.
type Actor struct {
	ID            string
	Name          string
	Email         string
	Phone         string
	Role          Role
	Department    Department
	City          string
	CivicPoints   int
	AverageRating float64
	TotalRatings  int
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsAdmin reports whether the actor holds the admin role.
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// DisplayName is used as the activity log actor.
func (a *Actor) DisplayName() string {
	if a == nil || a.Name == "" {
		return "System"
	}
	return a.Name
}

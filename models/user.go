package models

// Role is the access level of an authenticated user.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
)

// User is the public view of an account. Secrets never leave the repository.
type User struct {
	Username       string
	Role           Role
	Active         bool
	CanViewDetails bool
}

// IsManager reports whether u has the manager role.
func (u User) IsManager() bool {
	return u.Role == RoleManager
}

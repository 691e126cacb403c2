package domain

// Role is the flat authorization level of a user account
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// AllRoles contains all valid roles
var AllRoles = []Role{RoleUser, RoleAdmin}

// IsValid checks if a role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// RoleAllowed reports whether role is one of permitted. An empty permitted
// set allows nobody.
func RoleAllowed(role Role, permitted ...Role) bool {
	for _, p := range permitted {
		if role == p {
			return true
		}
	}
	return false
}

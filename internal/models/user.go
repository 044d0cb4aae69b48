package models

import "strings"

// Role is the account role reported by the auth endpoints.
type Role string

const (
	RoleStudent    Role = "student"
	RoleAdmin      Role = "admin"
	RoleDepartment Role = "department"
)

// ParseRole compares case-insensitively, the server reports roles upper-case.
// Unknown roles yield the empty Role.
func ParseRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleStudent:
		return RoleStudent
	case RoleAdmin:
		return RoleAdmin
	case RoleDepartment:
		return RoleDepartment
	default:
		return ""
	}
}

// Upper is the spelling the login endpoint expects.
func (r Role) Upper() string { return strings.ToUpper(string(r)) }

func (r *Role) UnmarshalText(text []byte) error {
	*r = ParseRole(string(text))
	return nil
}

// User is the transient copy of the signed-in account.
type User struct {
	ID         ID     `json:"id,omitempty"`
	Username   string `json:"username,omitempty"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	Department string `json:"department,omitempty"`
}

// DisplayName is the local part of the email, used in dashboard headers.
func (u User) DisplayName() string {
	if i := strings.IndexByte(u.Email, '@'); i >= 0 {
		return u.Email[:i]
	}
	return u.Email
}

package entity

import "strings"

// Role represents an authorization role
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleAuthor Role = "AUTHOR"
)

// ParseRole normalises s into a known role
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleAuthor:
		return RoleAuthor, true
	}
	return "", false
}

// Identity is the authenticated caller attached to a request
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

package user

import (
	"strings"
	"time"
)

// Role is the capability level attached to a user account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ParseRole normalizes raw input into a Role. Empty input falls back to the
// default RoleUser.
func ParseRole(raw string) (Role, bool) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return RoleUser, true
	}
	role := Role(raw)
	return role, role.Valid()
}

// User is the identity record persisted in the store.
//
// PasswordHash is serialized under the "password" key: the user listing (and
// therefore the cache snapshot) exposes the bcrypt digest verbatim. That
// mirrors the upstream behavior this service replaces; see DESIGN.md before
// changing the projection.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

package users

import (
	"time"

	"github.com/sitehem/sitehem/internal/roles"
)

// User represents a user account for management. The credential hash stays
// server-side; it is excluded from every response.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RoleAssignment is a user↔role association returned by link operations with
// both sides resolved.
type RoleAssignment struct {
	User      User       `json:"user"`
	Role      roles.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}

package roles

import (
	"time"

	"github.com/sitehem/sitehem/internal/permissions"
)

// Role represents a named permission bundle.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PermissionGrant is a role↔permission association returned by link
// operations with both sides resolved.
type PermissionGrant struct {
	Role       Role                   `json:"role"`
	Permission permissions.Permission `json:"permission"`
	CreatedAt  time.Time              `json:"created_at"`
}

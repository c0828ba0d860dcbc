package permissions

import "time"

// Permission represents an atomic capability. Names follow the
// `resource.action` convention; the group label exists for UI categorization
// only and carries no authorization meaning.
type Permission struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Group       string    `json:"group,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

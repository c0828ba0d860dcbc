package permissions

// CreatePermissionForm is the payload for creating a permission.
type CreatePermissionForm struct {
	Name        string `json:"name" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"max=255"`
	Group       string `json:"group" validate:"max=100"`
}

// UpdatePermissionForm is the payload for partially updating a permission.
// Nil fields are left untouched.
type UpdatePermissionForm struct {
	Name        *string `json:"name" validate:"omitempty,min=3,max=100"`
	Description *string `json:"description" validate:"omitempty,max=255"`
	Group       *string `json:"group" validate:"omitempty,max=100"`
}

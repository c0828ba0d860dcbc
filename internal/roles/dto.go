package roles

// CreateRoleForm is the payload for creating a role.
type CreateRoleForm struct {
	Name        string `json:"name" validate:"required,min=3,max=50"`
	Description string `json:"description" validate:"max=255"`
}

// UpdateRoleForm is the payload for partially updating a role. Nil fields
// are left untouched.
type UpdateRoleForm struct {
	Name        *string `json:"name" validate:"omitempty,min=3,max=50"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

// AssignPermissionForm is the payload for linking a permission to a role.
type AssignPermissionForm struct {
	PermissionID int64 `json:"permission_id" validate:"required,gt=0"`
}

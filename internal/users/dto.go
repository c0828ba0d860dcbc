package users

// CreateUserForm is the payload for registering a user.
type CreateUserForm struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// UpdateUserForm is the payload for partially updating a user. Nil fields
// are left untouched; a password triggers a re-hash.
type UpdateUserForm struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
	IsActive *bool   `json:"is_active"`
}

// AssignRoleForm is the payload for linking a role to a user.
type AssignRoleForm struct {
	RoleID int64 `json:"role_id" validate:"required,gt=0"`
}

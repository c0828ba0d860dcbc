package roles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sitehem/sitehem/internal/permissions"
	"github.com/sitehem/sitehem/internal/shared"
)

// PermissionFinder looks up permissions by id. Satisfied by
// *permissions.Service; linking verifies the target through its own module
// so the not-found error names the permission, not a foreign key.
type PermissionFinder interface {
	Get(ctx context.Context, id int64) (permissions.Permission, error)
}

// Service handles role business logic and role↔permission associations.
type Service struct {
	repo  Repository
	perms PermissionFinder
}

// NewService builds a Service instance.
func NewService(repo Repository, perms PermissionFinder) *Service {
	return &Service{repo: repo, perms: perms}
}

// List returns all roles.
func (s *Service) List(ctx context.Context) ([]Role, error) {
	return s.repo.List(ctx)
}

// Get fetches a role by id.
func (s *Service) Get(ctx context.Context, id int64) (Role, error) {
	role, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Role{}, fmt.Errorf("role %d: %w", id, shared.ErrNotFound)
		}
		return Role{}, err
	}
	return role, nil
}

// Create inserts a new role, rejecting duplicate names.
func (s *Service) Create(ctx context.Context, form CreateRoleForm) (Role, error) {
	name := strings.TrimSpace(form.Name)
	if _, err := s.repo.GetByName(ctx, name); err == nil {
		return Role{}, fmt.Errorf("role %q: %w", name, shared.ErrConflict)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return Role{}, err
	}
	role, err := s.repo.Create(ctx, Role{Name: name, Description: strings.TrimSpace(form.Description)})
	if err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return Role{}, fmt.Errorf("role %q: %w", name, shared.ErrConflict)
		}
		return Role{}, err
	}
	return role, nil
}

// Update applies a partial update. The name uniqueness check only runs when
// the name is actually changing, and excludes the record itself.
func (s *Service) Update(ctx context.Context, id int64, form UpdateRoleForm) (Role, error) {
	role, err := s.Get(ctx, id)
	if err != nil {
		return Role{}, err
	}
	if form.Name != nil {
		name := strings.TrimSpace(*form.Name)
		if name != role.Name {
			if existing, err := s.repo.GetByName(ctx, name); err == nil && existing.ID != id {
				return Role{}, fmt.Errorf("role %q: %w", name, shared.ErrConflict)
			} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return Role{}, err
			}
		}
		role.Name = name
	}
	if form.Description != nil {
		role.Description = strings.TrimSpace(*form.Description)
	}
	if err := s.repo.Update(ctx, role); err != nil {
		return Role{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes a role. The store cascades both its permission links and
// its user assignments.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("role %d: %w", id, shared.ErrNotFound)
		}
		return err
	}
	return nil
}

// AttachPermission links a permission to a role. Both sides must exist and
// the pair must not already be linked. Returns the association with both
// entities resolved.
func (s *Service) AttachPermission(ctx context.Context, roleID, permissionID int64) (PermissionGrant, error) {
	role, err := s.Get(ctx, roleID)
	if err != nil {
		return PermissionGrant{}, err
	}
	perm, err := s.perms.Get(ctx, permissionID)
	if err != nil {
		return PermissionGrant{}, err
	}
	createdAt, err := s.repo.AttachPermission(ctx, roleID, permissionID)
	if err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return PermissionGrant{}, fmt.Errorf("role %q already has permission %q: %w", role.Name, perm.Name, shared.ErrConflict)
		}
		return PermissionGrant{}, err
	}
	return PermissionGrant{Role: role, Permission: perm, CreatedAt: createdAt}, nil
}

// DetachPermission unlinks a permission from a role. The pair must exist;
// the sides themselves are not re-validated.
func (s *Service) DetachPermission(ctx context.Context, roleID, permissionID int64) error {
	if err := s.repo.DetachPermission(ctx, roleID, permissionID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("role %d has no permission %d: %w", roleID, permissionID, shared.ErrNotFound)
		}
		return err
	}
	return nil
}

// ListPermissions returns the permissions linked to a role.
func (s *Service) ListPermissions(ctx context.Context, roleID int64) ([]permissions.Permission, error) {
	if _, err := s.Get(ctx, roleID); err != nil {
		return nil, err
	}
	return s.repo.ListPermissions(ctx, roleID)
}

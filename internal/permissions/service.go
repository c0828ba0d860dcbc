package permissions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sitehem/sitehem/internal/shared"
)

// Service handles permission business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns all permissions.
func (s *Service) List(ctx context.Context) ([]Permission, error) {
	return s.repo.List(ctx)
}

// Get fetches a permission by id.
func (s *Service) Get(ctx context.Context, id int64) (Permission, error) {
	perm, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Permission{}, fmt.Errorf("permission %d: %w", id, shared.ErrNotFound)
		}
		return Permission{}, err
	}
	return perm, nil
}

// Create inserts a new permission, rejecting duplicate names.
func (s *Service) Create(ctx context.Context, form CreatePermissionForm) (Permission, error) {
	name := strings.TrimSpace(form.Name)
	if _, err := s.repo.GetByName(ctx, name); err == nil {
		return Permission{}, fmt.Errorf("permission %q: %w", name, shared.ErrConflict)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return Permission{}, err
	}
	perm, err := s.repo.Create(ctx, Permission{
		Name:        name,
		Description: strings.TrimSpace(form.Description),
		Group:       strings.TrimSpace(form.Group),
	})
	if err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return Permission{}, fmt.Errorf("permission %q: %w", name, shared.ErrConflict)
		}
		return Permission{}, err
	}
	return perm, nil
}

// Update applies a partial update. The name uniqueness check only runs when
// the name is actually changing, and excludes the record itself.
func (s *Service) Update(ctx context.Context, id int64, form UpdatePermissionForm) (Permission, error) {
	perm, err := s.Get(ctx, id)
	if err != nil {
		return Permission{}, err
	}
	if form.Name != nil {
		name := strings.TrimSpace(*form.Name)
		if name != perm.Name {
			if existing, err := s.repo.GetByName(ctx, name); err == nil && existing.ID != id {
				return Permission{}, fmt.Errorf("permission %q: %w", name, shared.ErrConflict)
			} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return Permission{}, err
			}
		}
		perm.Name = name
	}
	if form.Description != nil {
		perm.Description = strings.TrimSpace(*form.Description)
	}
	if form.Group != nil {
		perm.Group = strings.TrimSpace(*form.Group)
	}
	if err := s.repo.Update(ctx, perm); err != nil {
		return Permission{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes a permission and, via the store, its role associations.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("permission %d: %w", id, shared.ErrNotFound)
		}
		return err
	}
	return nil
}

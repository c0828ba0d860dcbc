package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/sitehem/sitehem/internal/roles"
	"github.com/sitehem/sitehem/internal/shared"
)

// RoleFinder looks up roles by id. Satisfied by *roles.Service; assignment
// verifies the target through its own module so the not-found error names
// the role, not a foreign key.
type RoleFinder interface {
	Get(ctx context.Context, id int64) (roles.Role, error)
}

// Service handles user business logic and user↔role associations.
type Service struct {
	repo       Repository
	roles      RoleFinder
	bcryptCost int
}

// NewService builds a Service instance. cost <= 0 falls back to the bcrypt
// default.
func NewService(repo Repository, roleFinder RoleFinder, cost int) *Service {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, roles: roleFinder, bcryptCost: cost}
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// Get fetches a user by id with the hash stripped.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return User{}, fmt.Errorf("user %d: %w", id, shared.ErrNotFound)
		}
		return User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

// Create registers a user: duplicate-email check, bcrypt hash, insert. The
// hash cost is deliberately expensive; this path must never become a hot
// loop.
func (s *Service) Create(ctx context.Context, form CreateUserForm) (User, error) {
	email := normalizeEmail(form.Email)
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, fmt.Errorf("email %q: %w", email, shared.ErrConflict)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), s.bcryptCost)
	if err != nil {
		return User{}, err
	}
	user, err := s.repo.Create(ctx, User{
		Name:         strings.TrimSpace(form.Name),
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return User{}, fmt.Errorf("email %q: %w", email, shared.ErrConflict)
		}
		return User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

// Update applies a partial update. The email uniqueness check only runs when
// the email is actually changing, excluding the record itself; a supplied
// password rewrites the credential hash.
func (s *Service) Update(ctx context.Context, id int64, form UpdateUserForm) (User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return User{}, fmt.Errorf("user %d: %w", id, shared.ErrNotFound)
		}
		return User{}, err
	}
	if form.Email != nil {
		email := normalizeEmail(*form.Email)
		if email != user.Email {
			if existing, err := s.repo.GetByEmail(ctx, email); err == nil && existing.ID != id {
				return User{}, fmt.Errorf("email %q: %w", email, shared.ErrConflict)
			} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return User{}, err
			}
		}
		user.Email = email
	}
	if form.Name != nil {
		user.Name = strings.TrimSpace(*form.Name)
	}
	if form.IsActive != nil {
		user.IsActive = *form.IsActive
	}
	if form.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*form.Password), s.bcryptCost)
		if err != nil {
			return User{}, err
		}
		user.PasswordHash = string(hash)
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return User{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes a user unconditionally. The store cascades their role
// assignments.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("user %d: %w", id, shared.ErrNotFound)
		}
		return err
	}
	return nil
}

// AssignRole links a role to a user. Both sides must exist and the pair must
// not already be linked. Returns the association with both entities resolved.
func (s *Service) AssignRole(ctx context.Context, userID, roleID int64) (RoleAssignment, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return RoleAssignment{}, err
	}
	role, err := s.roles.Get(ctx, roleID)
	if err != nil {
		return RoleAssignment{}, err
	}
	createdAt, err := s.repo.AssignRole(ctx, userID, roleID)
	if err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return RoleAssignment{}, fmt.Errorf("user %d already has role %q: %w", userID, role.Name, shared.ErrConflict)
		}
		return RoleAssignment{}, err
	}
	return RoleAssignment{User: user, Role: role, CreatedAt: createdAt}, nil
}

// RemoveRole unlinks a role from a user. The pair must exist.
func (s *Service) RemoveRole(ctx context.Context, userID, roleID int64) error {
	if err := s.repo.RemoveRole(ctx, userID, roleID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("user %d has no role %d: %w", userID, roleID, shared.ErrNotFound)
		}
		return err
	}
	return nil
}

// ListRoles returns the roles assigned to a user.
func (s *Service) ListRoles(ctx context.Context, userID int64) ([]roles.Role, error) {
	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.ListRoles(ctx, userID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

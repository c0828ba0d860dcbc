package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/sitehem/sitehem/internal/shared"
)

// Service wraps the authenticator and session resolver.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates email/password credentials. Unknown email, wrong
// password, and a deactivated account all fail with the same error so the
// response cannot distinguish them. On success the returned user carries no
// credential hash.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	user.PasswordHash = ""
	return user, nil
}

// Resolve rebuilds a session from decoded claims. The user and their role set
// are re-read from storage on every request; claims are trusted for identity
// only. A vanished or deactivated user yields the same outward signal as a
// bad token.
func (s *Service) Resolve(ctx context.Context, claims *Claims) (*shared.Identity, error) {
	userID, err := claims.UserID()
	if err != nil {
		return nil, shared.ErrUnauthenticated
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthenticated
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, shared.ErrUnauthenticated
	}
	roles, err := s.repo.ListRoleNames(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &shared.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Roles:  roles,
	}, nil
}

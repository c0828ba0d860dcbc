package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/sitehem/sitehem/internal/auth"
	"github.com/sitehem/sitehem/internal/shared"
	_ "github.com/sitehem/sitehem/testing"
)

type stubRepo struct {
	user      *auth.User
	roles     []string
	rolesErr  error
	findErr   error
	byIDCalls int
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	u := *s.user
	return &u, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	s.byIDCalls++
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.user == nil || s.user.ID != id {
		return nil, shared.ErrNotFound
	}
	u := *s.user
	return &u, nil
}

func (s *stubRepo) ListRoleNames(ctx context.Context, userID int64) ([]string, error) {
	if s.rolesErr != nil {
		return nil, s.rolesErr
	}
	return s.roles, nil
}

func activeUser(t *testing.T, password string) *auth.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &auth.User{
		ID:           1,
		Name:         "Admin",
		Email:        "admin@sitehem.local",
		PasswordHash: string(hash),
		IsActive:     true,
	}
}

func TestAuthenticate(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "secret123")}
	service := auth.NewService(repo)

	user, err := service.Authenticate(context.Background(), "admin@sitehem.local", "secret123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.ID != 1 {
		t.Fatalf("user id = %d, want 1", user.ID)
	}
	if user.PasswordHash != "" {
		t.Fatal("password hash leaked out of the service")
	}
}

func TestAuthenticateFailuresCollapse(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "secret123")}
	service := auth.NewService(repo)
	ctx := context.Background()

	cases := []struct {
		name  string
		setup func()
		email string
		pass  string
	}{
		{"unknown email", func() {}, "ghost@sitehem.local", "secret123"},
		{"wrong password", func() {}, "admin@sitehem.local", "wrong-pass"},
		{"deactivated account", func() { repo.user.IsActive = false }, "admin@sitehem.local", "secret123"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.setup()
			if _, err := service.Authenticate(ctx, tc.email, tc.pass); !errors.Is(err, shared.ErrInvalidCredentials) {
				t.Fatalf("err = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func claimsForUser(id string) *auth.Claims {
	claims := &auth.Claims{}
	claims.RegisteredClaims = jwt.RegisteredClaims{Subject: id, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	return claims
}

func TestResolve(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "secret123"), roles: []string{"admin", "editor"}}
	service := auth.NewService(repo)

	identity, err := service.Resolve(context.Background(), claimsForUser("1"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if identity.UserID != 1 || identity.Email != "admin@sitehem.local" {
		t.Fatalf("identity = %+v", identity)
	}
	if len(identity.Roles) != 2 || identity.Roles[0] != "admin" {
		t.Fatalf("roles = %v", identity.Roles)
	}
	if repo.byIDCalls != 1 {
		t.Fatalf("expected the user to be re-read from storage, calls = %d", repo.byIDCalls)
	}
}

func TestResolveRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("bad subject", func(t *testing.T) {
		service := auth.NewService(&stubRepo{user: activeUser(t, "x")})
		if _, err := service.Resolve(ctx, claimsForUser("nope")); !errors.Is(err, shared.ErrUnauthenticated) {
			t.Fatalf("err = %v, want ErrUnauthenticated", err)
		}
	})

	t.Run("vanished user", func(t *testing.T) {
		service := auth.NewService(&stubRepo{})
		if _, err := service.Resolve(ctx, claimsForUser("1")); !errors.Is(err, shared.ErrUnauthenticated) {
			t.Fatalf("err = %v, want ErrUnauthenticated", err)
		}
	})

	t.Run("deactivated user", func(t *testing.T) {
		user := activeUser(t, "x")
		user.IsActive = false
		service := auth.NewService(&stubRepo{user: user})
		if _, err := service.Resolve(ctx, claimsForUser("1")); !errors.Is(err, shared.ErrUnauthenticated) {
			t.Fatalf("err = %v, want ErrUnauthenticated", err)
		}
	})

	t.Run("storage fault surfaces", func(t *testing.T) {
		repoErr := errors.New("connection reset")
		service := auth.NewService(&stubRepo{user: activeUser(t, "x"), rolesErr: repoErr})
		if _, err := service.Resolve(ctx, claimsForUser("1")); !errors.Is(err, repoErr) {
			t.Fatalf("err = %v, want the storage error", err)
		}
	})
}

package users

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sitehem/sitehem/internal/roles"
	"github.com/sitehem/sitehem/internal/shared"
)

type assignmentKey struct {
	userID int64
	roleID int64
}

type mockRepository struct {
	users       map[int64]User
	byEmail     map[string]int64
	assignments map[assignmentKey]time.Time
	nextID      int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:       make(map[int64]User),
		byEmail:     make(map[string]int64),
		assignments: make(map[assignmentKey]time.Time),
		nextID:      1,
	}
}

func (m *mockRepository) List(ctx context.Context) ([]User, error) {
	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (User, error) {
	u, ok := m.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (m *mockRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	id, ok := m.byEmail[email]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return m.users[id], nil
}

func (m *mockRepository) Create(ctx context.Context, user User) (User, error) {
	if _, exists := m.byEmail[user.Email]; exists {
		return User{}, shared.ErrConflict
	}
	user.ID = m.nextID
	m.nextID++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users[user.ID] = user
	m.byEmail[user.Email] = user.ID
	return user, nil
}

func (m *mockRepository) Update(ctx context.Context, user User) error {
	existing, ok := m.users[user.ID]
	if !ok {
		return shared.ErrNotFound
	}
	delete(m.byEmail, existing.Email)
	user.UpdatedAt = time.Now()
	m.users[user.ID] = user
	m.byEmail[user.Email] = user.ID
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	u, ok := m.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	delete(m.byEmail, u.Email)
	delete(m.users, id)
	for key := range m.assignments {
		if key.userID == id {
			delete(m.assignments, key)
		}
	}
	return nil
}

func (m *mockRepository) AssignRole(ctx context.Context, userID, roleID int64) (time.Time, error) {
	key := assignmentKey{userID: userID, roleID: roleID}
	if _, exists := m.assignments[key]; exists {
		return time.Time{}, shared.ErrConflict
	}
	now := time.Now()
	m.assignments[key] = now
	return now, nil
}

func (m *mockRepository) RemoveRole(ctx context.Context, userID, roleID int64) error {
	key := assignmentKey{userID: userID, roleID: roleID}
	if _, exists := m.assignments[key]; !exists {
		return shared.ErrNotFound
	}
	delete(m.assignments, key)
	return nil
}

func (m *mockRepository) ListRoles(ctx context.Context, userID int64) ([]roles.Role, error) {
	out := []roles.Role{}
	for key := range m.assignments {
		if key.userID == userID {
			out = append(out, roles.Role{ID: key.roleID, Name: fmt.Sprintf("role-%d", key.roleID)})
		}
	}
	return out, nil
}

type mockRoleFinder struct {
	roles map[int64]roles.Role
}

func (m *mockRoleFinder) Get(ctx context.Context, id int64) (roles.Role, error) {
	r, ok := m.roles[id]
	if !ok {
		return roles.Role{}, fmt.Errorf("role %d: %w", id, shared.ErrNotFound)
	}
	return r, nil
}

func newTestService() (*Service, *mockRepository) {
	repo := newMockRepository()
	finder := &mockRoleFinder{roles: map[int64]roles.Role{
		5: {ID: 5, Name: "admin"},
		6: {ID: 6, Name: "editor"},
	}}
	return NewService(repo, finder, bcrypt.MinCost), repo
}

func createTestUser(t *testing.T, service *Service) User {
	t.Helper()
	user, err := service.Create(context.Background(), CreateUserForm{
		Name:     "Jamie",
		Email:    "jamie@sitehem.local",
		Password: "secret123",
	})
	require.NoError(t, err)
	return user
}

func TestCreateUser(t *testing.T) {
	service, repo := newTestService()

	user := createTestUser(t, service)
	assert.NotZero(t, user.ID)
	assert.True(t, user.IsActive, "new accounts start active")
	assert.Empty(t, user.PasswordHash, "hash must not leave the service")

	stored := repo.users[user.ID]
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")))
}

func TestCreateUserNormalizesEmail(t *testing.T) {
	service, repo := newTestService()

	user, err := service.Create(context.Background(), CreateUserForm{
		Name:     "Jamie",
		Email:    "  Jamie@Sitehem.LOCAL ",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "jamie@sitehem.local", user.Email)
	_, exists := repo.byEmail["jamie@sitehem.local"]
	assert.True(t, exists)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	service, repo := newTestService()
	createTestUser(t, service)

	_, err := service.Create(context.Background(), CreateUserForm{
		Name:     "Impostor",
		Email:    "JAMIE@sitehem.local",
		Password: "secret456",
	})
	require.ErrorIs(t, err, shared.ErrConflict)
	assert.Len(t, repo.users, 1)
}

func TestUpdateUserPartial(t *testing.T) {
	service, repo := newTestService()
	user := createTestUser(t, service)
	before := repo.users[user.ID].PasswordHash

	name := "Jamie Q"
	active := false
	updated, err := service.Update(context.Background(), user.ID, UpdateUserForm{Name: &name, IsActive: &active})
	require.NoError(t, err)
	assert.Equal(t, "Jamie Q", updated.Name)
	assert.False(t, updated.IsActive)
	assert.Equal(t, user.Email, updated.Email)
	assert.Equal(t, before, repo.users[user.ID].PasswordHash, "password untouched without a new one")
}

func TestUpdateUserRehashesPassword(t *testing.T) {
	service, repo := newTestService()
	user := createTestUser(t, service)
	before := repo.users[user.ID].PasswordHash

	password := "newsecret"
	_, err := service.Update(context.Background(), user.ID, UpdateUserForm{Password: &password})
	require.NoError(t, err)

	after := repo.users[user.ID].PasswordHash
	assert.NotEqual(t, before, after)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(after), []byte("newsecret")))
}

func TestUpdateUserEmailConflict(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()
	createTestUser(t, service)
	other, err := service.Create(ctx, CreateUserForm{Name: "Other", Email: "other@sitehem.local", Password: "secret123"})
	require.NoError(t, err)

	taken := "jamie@sitehem.local"
	_, err = service.Update(ctx, other.ID, UpdateUserForm{Email: &taken})
	require.ErrorIs(t, err, shared.ErrConflict)

	// Re-submitting their own email is fine.
	own := "other@sitehem.local"
	_, err = service.Update(ctx, other.ID, UpdateUserForm{Email: &own})
	require.NoError(t, err)
}

func TestAssignRole(t *testing.T) {
	service, repo := newTestService()
	user := createTestUser(t, service)

	assignment, err := service.AssignRole(context.Background(), user.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, user.ID, assignment.User.ID)
	assert.Equal(t, "admin", assignment.Role.Name)
	assert.False(t, assignment.CreatedAt.IsZero())
	assert.Len(t, repo.assignments, 1)
}

func TestAssignRoleDuplicate(t *testing.T) {
	service, repo := newTestService()
	user := createTestUser(t, service)
	ctx := context.Background()

	_, err := service.AssignRole(ctx, user.ID, 5)
	require.NoError(t, err)
	_, err = service.AssignRole(ctx, user.ID, 5)
	require.ErrorIs(t, err, shared.ErrConflict)
	assert.Len(t, repo.assignments, 1, "duplicate link must not grow the association set")
}

func TestAssignRoleMissingSides(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	_, err := service.AssignRole(ctx, 99, 5)
	require.ErrorIs(t, err, shared.ErrNotFound)

	user := createTestUser(t, service)
	_, err = service.AssignRole(ctx, user.ID, 99)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRemoveRole(t *testing.T) {
	service, _ := newTestService()
	user := createTestUser(t, service)
	ctx := context.Background()

	_, err := service.AssignRole(ctx, user.ID, 5)
	require.NoError(t, err)
	require.NoError(t, service.RemoveRole(ctx, user.ID, 5))
	require.ErrorIs(t, service.RemoveRole(ctx, user.ID, 5), shared.ErrNotFound)
}

func TestListRolesRequiresUser(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	_, err := service.ListRoles(ctx, 99)
	require.ErrorIs(t, err, shared.ErrNotFound)

	user := createTestUser(t, service)
	_, err = service.AssignRole(ctx, user.ID, 5)
	require.NoError(t, err)
	_, err = service.AssignRole(ctx, user.ID, 6)
	require.NoError(t, err)

	assigned, err := service.ListRoles(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, assigned, 2)
}

func TestDeleteUserCascadesAssignments(t *testing.T) {
	service, repo := newTestService()
	user := createTestUser(t, service)
	ctx := context.Background()

	_, err := service.AssignRole(ctx, user.ID, 5)
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, user.ID))
	assert.Empty(t, repo.assignments)
	require.ErrorIs(t, service.Delete(ctx, user.ID), shared.ErrNotFound)
}

func TestListStripsHashes(t *testing.T) {
	service, _ := newTestService()
	createTestUser(t, service)

	listed, err := service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Empty(t, listed[0].PasswordHash)
}

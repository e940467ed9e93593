package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agape-academy/academy-api/internal/models"
	"github.com/agape-academy/academy-api/internal/repository"
	appErrors "github.com/agape-academy/academy-api/pkg/errors"
)

type mockUserRepo struct {
	users   map[string]models.User
	changes map[string]interface{}
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var list []models.User
	for _, u := range m.users {
		list = append(list, u)
	}
	return list, len(list), nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) FindByUID(ctx context.Context, uid string) (*models.User, error) {
	for _, u := range m.users {
		if u.UID == uid {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.users == nil {
		m.users = make(map[string]models.User)
	}
	user.ID = "new-user"
	m.users[user.ID] = *user
	return user, nil
}

func (m *mockUserRepo) Update(ctx context.Context, id string, changes map[string]interface{}) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	m.changes = changes
	if active, ok := changes["isActive"].(bool); ok {
		u.IsActive = active
	}
	if role, ok := changes["role"].(models.UserRole); ok {
		u.Role = role
	}
	m.users[id] = u
	return &u, nil
}

type mockInvalidator struct {
	invalidated []string
}

func (m *mockInvalidator) Invalidate(ctx context.Context, uid string) {
	m.invalidated = append(m.invalidated, uid)
}

func TestUserServiceCreateDefaultsToStudent(t *testing.T) {
	svc := NewUserService(&mockUserRepo{}, nil, NewValidator(), zap.NewNop())

	user, err := svc.Create(context.Background(), CreateUserRequest{
		Email:       "maria@example.org",
		DisplayName: "Maria",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.True(t, user.IsActive)
}

func TestUserServiceCreateDuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{users: map[string]models.User{
		"u1": {ID: "u1", Email: "maria@example.org"},
	}}
	svc := NewUserService(repo, nil, NewValidator(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Email:       "maria@example.org",
		DisplayName: "Maria",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.Status)
}

func TestUserServiceCreateInvalidEmail(t *testing.T) {
	svc := NewUserService(&mockUserRepo{}, nil, NewValidator(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Email:       "not-an-email",
		DisplayName: "Maria",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
}

func TestUserServiceRoleChangeRequiresAdmin(t *testing.T) {
	repo := &mockUserRepo{users: map[string]models.User{
		"u1": {ID: "u1", UID: "uid-1", Email: "maria@example.org", Role: models.RoleStudent},
	}}
	svc := NewUserService(repo, nil, NewValidator(), zap.NewNop())
	role := "TEACHER"

	_, err := svc.Update(context.Background(), &models.Identity{UserID: "u1", Role: models.RoleStudent}, "u1", UpdateUserRequest{Role: &role})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Status)

	updated, err := svc.Update(context.Background(), &models.Identity{UserID: "admin", Role: models.RoleAdmin}, "u1", UpdateUserRequest{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, updated.Role)
}

func TestUserServiceUpdateInvalidatesIdentityCache(t *testing.T) {
	repo := &mockUserRepo{users: map[string]models.User{
		"u1": {ID: "u1", UID: "uid-1", Email: "maria@example.org"},
	}}
	identities := &mockInvalidator{}
	svc := NewUserService(repo, identities, NewValidator(), zap.NewNop())
	name := "Maria Magdalena"

	_, err := svc.Update(context.Background(), &models.Identity{UserID: "u1", Role: models.RoleStudent}, "u1", UpdateUserRequest{DisplayName: &name})
	require.NoError(t, err)
	assert.Contains(t, identities.invalidated, "uid-1")
}

func TestUserServiceSelfDeactivation(t *testing.T) {
	roles := []models.UserRole{models.RoleStudent, models.RoleTeacher, models.RoleAdmin, models.RoleSuperAdmin}
	for _, role := range roles {
		repo := &mockUserRepo{users: map[string]models.User{
			"u1": {ID: "u1", UID: "uid-1", IsActive: true},
		}}
		svc := NewUserService(repo, nil, NewValidator(), zap.NewNop())

		_, err := svc.Deactivate(context.Background(), &models.Identity{UserID: "u1", Role: role}, "u1")
		var appErr *appErrors.Error
		require.ErrorAs(t, err, &appErr, "role %s", role)
		assert.Equal(t, 400, appErr.Status, "self-deactivation is rejected for role %s", role)
	}
}

func TestUserServiceDeactivateRequiresAdmin(t *testing.T) {
	repo := &mockUserRepo{users: map[string]models.User{
		"u1": {ID: "u1", UID: "uid-1", IsActive: true},
	}}
	svc := NewUserService(repo, nil, NewValidator(), zap.NewNop())

	_, err := svc.Deactivate(context.Background(), &models.Identity{UserID: "other", Role: models.RoleTeacher}, "u1")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Status)

	updated, err := svc.Deactivate(context.Background(), &models.Identity{UserID: "admin", Role: models.RoleAdmin}, "u1")
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
}

func TestUserServiceGetPinsNonAdmins(t *testing.T) {
	repo := &mockUserRepo{users: map[string]models.User{
		"u1": {ID: "u1"},
		"u2": {ID: "u2"},
	}}
	svc := NewUserService(repo, nil, NewValidator(), zap.NewNop())

	_, err := svc.Get(context.Background(), &models.Identity{UserID: "u1", Role: models.RoleStudent}, "u2")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Status)

	user, err := svc.Get(context.Background(), &models.Identity{UserID: "u1", Role: models.RoleStudent}, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}

package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/coursemart-api/internal/models"
	"github.com/noah-isme/coursemart-api/pkg/commerce"
	appErrors "github.com/noah-isme/coursemart-api/pkg/errors"
)

type mockUserRepo struct {
	users     []models.User
	listErr   error
	updateErr error
	updated   map[models.ID]models.UserRole
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var users []models.User
	for _, u := range m.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

func (m *mockUserRepo) UpdateRole(ctx context.Context, id models.ID, role models.UserRole) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if m.updated == nil {
		m.updated = make(map[models.ID]models.UserRole)
	}
	m.updated[id] = role
	for i := range m.users {
		if m.users[i].ID == id {
			m.users[i].Role = role
		}
	}
	return nil
}

func newTestUserService(repo *mockUserRepo) *UserService {
	return NewUserService(repo, validator.New(), zap.NewNop())
}

func TestUserServiceListFiltersRole(t *testing.T) {
	repo := &mockUserRepo{users: []models.User{
		{ID: 1, Email: "admin@example.com", Role: models.RoleAdmin},
		{ID: 2, Email: "ada@example.com", Role: models.RoleStudent},
	}}
	svc := newTestUserService(repo)

	role := models.RoleStudent
	users, err := svc.List(context.Background(), models.UserFilter{Role: &role})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, models.ID(2), users[0].ID)

	bad := models.UserRole("TEACHER")
	_, err = svc.List(context.Background(), models.UserFilter{Role: &bad})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUserServiceUpdateRole(t *testing.T) {
	repo := &mockUserRepo{users: []models.User{
		{ID: 1, Role: models.RoleAdmin},
		{ID: 2, Role: models.RoleStudent},
	}}
	svc := newTestUserService(repo)

	users, err := svc.UpdateRole(context.Background(), 1, 2, models.UpdateRoleRequest{Role: models.RoleStaff})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, repo.updated[2])
	assert.Equal(t, models.RoleStaff, users[1].Role)
}

func TestUserServiceUpdateRoleRejections(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newTestUserService(repo)

	_, err := svc.UpdateRole(context.Background(), 1, 2, models.UpdateRoleRequest{Role: "owner"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.UpdateRole(context.Background(), 1, 1, models.UpdateRoleRequest{Role: models.RoleStudent})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	repo.updateErr = &commerce.APIError{Endpoint: "/api/user/update_role.php", Message: "User not found"}
	_, err = svc.UpdateRole(context.Background(), 1, 2, models.UpdateRoleRequest{Role: models.RoleStudent})
	require.Error(t, err)
	assert.Equal(t, "Failed to update role: User not found", appErrors.FromError(err).Message)
	assert.Empty(t, repo.updated)
}

package service

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/coursemart-api/internal/models"
	"github.com/noah-isme/coursemart-api/pkg/commerce"
	appErrors "github.com/noah-isme/coursemart-api/pkg/errors"
)

type mockAdminResourceRepo struct {
	calls   []string
	records []models.ResourceRecord
	forms   []url.Values
	err     error
}

func (m *mockAdminResourceRepo) List(ctx context.Context, resource models.AdminResource) ([]models.ResourceRecord, error) {
	m.calls = append(m.calls, "list:"+string(resource))
	return m.records, nil
}

func (m *mockAdminResourceRepo) Create(ctx context.Context, resource models.AdminResource, fields url.Values) error {
	m.calls = append(m.calls, "create:"+string(resource))
	m.forms = append(m.forms, fields)
	return m.err
}

func (m *mockAdminResourceRepo) Update(ctx context.Context, resource models.AdminResource, id models.ID, fields url.Values) error {
	m.calls = append(m.calls, "update:"+string(resource)+":"+id.String())
	m.forms = append(m.forms, fields)
	return m.err
}

func (m *mockAdminResourceRepo) Delete(ctx context.Context, resource models.AdminResource, id models.ID) error {
	m.calls = append(m.calls, "delete:"+string(resource)+":"+id.String())
	return m.err
}

type countingInvalidator struct {
	count int
}

func (c *countingInvalidator) Invalidate(ctx context.Context) {
	c.count++
}

func TestAdminResourceSaveCreatesWithoutID(t *testing.T) {
	repo := &mockAdminResourceRepo{records: []models.ResourceRecord{{"id": 1, "name": "Programming"}}}
	invalidator := &countingInvalidator{}
	svc := NewAdminResourceService(repo, invalidator, zap.NewNop())

	records, err := svc.Save(context.Background(), models.ResourceCategories, 0, url.Values{"name": {"Programming"}, "id": {"9"}})
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, []string{"create:categories", "list:categories"}, repo.calls)
	assert.Empty(t, repo.forms[0].Get("id"))
	assert.Equal(t, 1, invalidator.count)
}

func TestAdminResourceSaveUpdatesWithID(t *testing.T) {
	repo := &mockAdminResourceRepo{}
	svc := NewAdminResourceService(repo, nil, nil)

	_, err := svc.Save(context.Background(), models.ResourceChapters, 4, url.Values{"title": {"Setup"}, "course_id": {"1"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"update:chapters:4", "list:chapters"}, repo.calls)
}

func TestAdminResourceSaveValidation(t *testing.T) {
	repo := &mockAdminResourceRepo{}
	svc := NewAdminResourceService(repo, nil, nil)

	_, err := svc.Save(context.Background(), models.ResourceCourses, 0, url.Values{"title": {"Go"}})
	require.Error(t, err)
	assert.Equal(t, "missing required fields: price, category_id", appErrors.FromError(err).Message)

	_, err = svc.Save(context.Background(), "payments", 0, url.Values{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.calls)
}

func TestAdminResourceDeleteRefetches(t *testing.T) {
	repo := &mockAdminResourceRepo{}
	svc := NewAdminResourceService(repo, nil, nil)

	_, err := svc.Delete(context.Background(), models.ResourceLectures, 12)
	require.NoError(t, err)
	assert.Equal(t, []string{"delete:lectures:12", "list:lectures"}, repo.calls)
}

func TestAdminResourceMutationFailures(t *testing.T) {
	repo := &mockAdminResourceRepo{err: &commerce.APIError{Endpoint: "/api/courses/delete_course.php", Message: "Course has enrollments"}}
	svc := NewAdminResourceService(repo, nil, nil)

	_, err := svc.Delete(context.Background(), models.ResourceCourses, 3)
	require.Error(t, err)
	assert.Equal(t, "Failed to delete record: Course has enrollments", appErrors.FromError(err).Message)

	repo.err = errors.New("timeout")
	_, err = svc.Save(context.Background(), models.ResourceCategories, 0, url.Values{"name": {"X"}})
	require.Error(t, err)
	assert.Equal(t, "Error saving record.", appErrors.FromError(err).Message)
	assert.NotContains(t, repo.calls, "list:categories")
}

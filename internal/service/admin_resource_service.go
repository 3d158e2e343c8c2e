package service

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/coursemart-api/internal/models"
	appErrors "github.com/noah-isme/coursemart-api/pkg/errors"
)

const (
	saveFailedPrefix      = "Failed to save record: "
	saveTransportFailed   = "Error saving record."
	deleteFailedPrefix    = "Failed to delete record: "
	deleteTransportFailed = "Error deleting record."
)

type adminResourceRepository interface {
	List(ctx context.Context, resource models.AdminResource) ([]models.ResourceRecord, error)
	Create(ctx context.Context, resource models.AdminResource, fields url.Values) error
	Update(ctx context.Context, resource models.AdminResource, id models.ID, fields url.Values) error
	Delete(ctx context.Context, resource models.AdminResource, id models.ID) error
}

type catalogInvalidator interface {
	Invalidate(ctx context.Context)
}

// AdminResourceService runs the back-office CRUD panel. Every mutation is followed
// by a fresh fetch of the resource list.
type AdminResourceService struct {
	repo    adminResourceRepository
	catalog catalogInvalidator
	logger  *zap.Logger
}

// NewAdminResourceService constructs AdminResourceService. catalog may be nil.
func NewAdminResourceService(repo adminResourceRepository, catalog catalogInvalidator, logger *zap.Logger) *AdminResourceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminResourceService{repo: repo, catalog: catalog, logger: logger}
}

// List returns every record of the resource.
func (s *AdminResourceService) List(ctx context.Context, resource models.AdminResource) ([]models.ResourceRecord, error) {
	if !resource.Valid() {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown resource")
	}
	records, err := s.repo.List(ctx, resource)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load "+string(resource))
	}
	return records, nil
}

// Save creates the record when id is zero and updates it otherwise.
func (s *AdminResourceService) Save(ctx context.Context, resource models.AdminResource, id models.ID, fields url.Values) ([]models.ResourceRecord, error) {
	if !resource.Valid() {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown resource")
	}
	if id < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid id")
	}
	form := url.Values{}
	for key, values := range fields {
		if key == "id" {
			continue
		}
		form[key] = values
	}
	if missing := missingFields(resource, form); len(missing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing required fields: "+strings.Join(missing, ", "))
	}

	var err error
	if id == 0 {
		err = s.repo.Create(ctx, resource, form)
	} else {
		err = s.repo.Update(ctx, resource, id, form)
	}
	if err != nil {
		s.logger.Warn("admin save failed",
			zap.String("resource", string(resource)),
			zap.Int64("id", int64(id)),
			zap.Error(err))
		return nil, mutationError(err, saveFailedPrefix, saveTransportFailed)
	}
	s.logger.Info("admin record saved", zap.String("resource", string(resource)), zap.Int64("id", int64(id)))
	return s.afterMutation(ctx, resource)
}

// Delete removes a record and returns the refreshed list.
func (s *AdminResourceService) Delete(ctx context.Context, resource models.AdminResource, id models.ID) ([]models.ResourceRecord, error) {
	if !resource.Valid() {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown resource")
	}
	if id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid id")
	}
	if err := s.repo.Delete(ctx, resource, id); err != nil {
		s.logger.Warn("admin delete failed",
			zap.String("resource", string(resource)),
			zap.Int64("id", int64(id)),
			zap.Error(err))
		return nil, mutationError(err, deleteFailedPrefix, deleteTransportFailed)
	}
	s.logger.Info("admin record deleted", zap.String("resource", string(resource)), zap.Int64("id", int64(id)))
	return s.afterMutation(ctx, resource)
}

func (s *AdminResourceService) afterMutation(ctx context.Context, resource models.AdminResource) ([]models.ResourceRecord, error) {
	if s.catalog != nil {
		s.catalog.Invalidate(ctx)
	}
	return s.List(ctx, resource)
}

func missingFields(resource models.AdminResource, form url.Values) []string {
	var missing []string
	for _, field := range resource.RequiredFields() {
		if strings.TrimSpace(form.Get(field)) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

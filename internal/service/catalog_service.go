package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/coursemart-api/internal/models"
	"github.com/noah-isme/coursemart-api/internal/repository"
	appErrors "github.com/noah-isme/coursemart-api/pkg/errors"
)

const (
	catalogCoursesKey    = "catalog:courses"
	catalogCategoriesKey = "catalog:categories"
	catalogCachePattern  = "catalog:*"
	defaultCatalogSize   = 9
)

type catalogRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	FindBySlug(ctx context.Context, slug string) (*models.CourseDetail, error)
	Categories(ctx context.Context) ([]models.Category, error)
}

// CatalogService serves the public course catalog. Search, category filter and sort
// run over the full course list before paging.
type CatalogService struct {
	repo     catalogRepository
	cache    *CacheService
	logger   *zap.Logger
	pageSize int
	cacheTTL time.Duration
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(repo catalogRepository, cache *CacheService, logger *zap.Logger, pageSize int) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = defaultCatalogSize
	}
	return &CatalogService{repo: repo, cache: cache, logger: logger, pageSize: pageSize, cacheTTL: 5 * time.Minute}
}

// List returns one page of the filtered catalog.
func (s *CatalogService) List(ctx context.Context, filter models.CatalogFilter) ([]models.Course, *models.Pagination, error) {
	switch filter.Sort {
	case models.CatalogSortNone, models.CatalogSortAsc, models.CatalogSortDesc:
	default:
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "sort must be asc or desc")
	}

	courses, err := s.allCourses(ctx)
	if err != nil {
		return nil, nil, err
	}
	filtered := filterCourses(courses, filter)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	total := len(filtered)
	totalPages := (total + s.pageSize - 1) / s.pageSize
	start := (page - 1) * s.pageSize
	if start > total {
		start = total
	}
	end := start + s.pageSize
	if end > total {
		end = total
	}

	pagination := &models.Pagination{Page: page, PageSize: s.pageSize, TotalCount: total, TotalPages: totalPages}
	return filtered[start:end], pagination, nil
}

// Detail returns a course with its chapters and lectures.
func (s *CatalogService) Detail(ctx context.Context, slug string) (*models.CourseDetail, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course slug is required")
	}
	detail, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load course")
	}
	return detail, nil
}

// Categories lists catalog categories and reports whether they came from cache.
func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, bool, error) {
	categories, hit, err := Remember(ctx, s.cache, catalogCategoriesKey, s.cacheTTL, s.repo.Categories)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load categories")
	}
	return categories, hit, nil
}

// Invalidate drops cached catalog listings after a back-office change.
func (s *CatalogService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, catalogCachePattern); err != nil {
		s.logger.Warn("catalog cache invalidate failed", zap.Error(err))
	}
}

func (s *CatalogService) allCourses(ctx context.Context) ([]models.Course, error) {
	courses, _, err := Remember(ctx, s.cache, catalogCoursesKey, s.cacheTTL, s.repo.List)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load courses")
	}
	return courses, nil
}

func filterCourses(courses []models.Course, filter models.CatalogFilter) []models.Course {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]models.Course, 0, len(courses))
	for _, course := range courses {
		if search != "" && !strings.Contains(strings.ToLower(course.Title), search) {
			continue
		}
		if filter.CategoryID > 0 && course.CategoryID != filter.CategoryID {
			continue
		}
		out = append(out, course)
	}
	switch filter.Sort {
	case models.CatalogSortAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.Float64() < out[j].Price.Float64() })
	case models.CatalogSortDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.Float64() > out[j].Price.Float64() })
	}
	return out
}

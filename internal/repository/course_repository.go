package repository

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/noah-isme/coursemart-api/internal/models"
	"github.com/noah-isme/coursemart-api/pkg/commerce"
)

const (
	courseListPath   = "/api/courses/fetch_courses.php"
	courseBySlugPath = "/api/courses/fetch_course_by_slug.php"
	categoryListPath = "/api/categories/fetch_all.php"
	notFoundMarker   = "not found"
)

// CourseRepository serves the public catalog from the commerce API.
type CourseRepository struct {
	client *commerce.Client
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(client *commerce.Client) *CourseRepository {
	return &CourseRepository{client: client}
}

// List returns every published course.
func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	var payload struct {
		commerce.Status
		Courses []models.Course `json:"courses"`
	}
	if err := r.client.GetJSON(ctx, courseListPath, nil, &payload); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	if err := commerce.Check(courseListPath, payload.Status); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	if payload.Courses == nil {
		return []models.Course{}, nil
	}
	return payload.Courses, nil
}

// FindBySlug returns a course with its chapters and lectures.
func (r *CourseRepository) FindBySlug(ctx context.Context, slug string) (*models.CourseDetail, error) {
	var payload struct {
		commerce.Status
		Course   *models.Course   `json:"course"`
		Chapters []models.Chapter `json:"chapters"`
	}
	if err := r.client.GetJSON(ctx, courseBySlugPath, url.Values{"slug": {slug}}, &payload); err != nil {
		return nil, fmt.Errorf("find course %s: %w", slug, err)
	}
	if err := commerce.Check(courseBySlugPath, payload.Status); payload.Reported() && err != nil {
		if strings.Contains(strings.ToLower(payload.Reason()), notFoundMarker) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find course %s: %w", slug, err)
	}
	if payload.Course == nil {
		return nil, ErrNotFound
	}
	detail := &models.CourseDetail{Course: *payload.Course, Chapters: payload.Chapters}
	if detail.Chapters == nil {
		detail.Chapters = []models.Chapter{}
	}
	return detail, nil
}

// Categories lists catalog categories for the storefront filter.
func (r *CourseRepository) Categories(ctx context.Context) ([]models.Category, error) {
	var payload struct {
		commerce.Status
		Categories []models.Category `json:"categories"`
	}
	if err := r.client.GetJSON(ctx, categoryListPath, nil, &payload); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if err := commerce.Check(categoryListPath, payload.Status); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if payload.Categories == nil {
		return []models.Category{}, nil
	}
	return payload.Categories, nil
}

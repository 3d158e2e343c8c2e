package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursemart-api/internal/middleware"
	"github.com/noah-isme/coursemart-api/internal/models"
	appErrors "github.com/noah-isme/coursemart-api/pkg/errors"
	"github.com/noah-isme/coursemart-api/pkg/response"
)

type catalogService interface {
	List(ctx context.Context, filter models.CatalogFilter) ([]models.Course, *models.Pagination, error)
	Detail(ctx context.Context, slug string) (*models.CourseDetail, error)
	Categories(ctx context.Context) ([]models.Category, bool, error)
}

// CatalogHandler serves the public course catalog.
type CatalogHandler struct {
	catalog catalogService
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalog catalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListCourses godoc
// @Summary List courses
// @Tags Catalog
// @Produce json
// @Param search query string false "Title search"
// @Param category query int false "Category id"
// @Param sort query string false "Price sort (asc|desc)"
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /catalog/courses [get]
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	filter := models.CatalogFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Sort:   models.CatalogSort(strings.ToLower(c.Query("sort"))),
	}
	if raw := c.Query("category"); raw != "" && raw != "all" {
		id, err := models.ParseID(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid category"))
			return
		}
		filter.CategoryID = id
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}

	courses, pagination, err := h.catalog.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, pagination)
}

// CourseDetail godoc
// @Summary Course detail
// @Tags Catalog
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /catalog/courses/{slug} [get]
func (h *CatalogHandler) CourseDetail(c *gin.Context) {
	detail, err := h.catalog.Detail(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Categories godoc
// @Summary List categories
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/categories [get]
func (h *CatalogHandler) Categories(c *gin.Context) {
	categories, hit, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, categories, nil, middleware.ExtractMeta(c))
}

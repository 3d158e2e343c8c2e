package handler

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursemart-api/internal/models"
	appErrors "github.com/noah-isme/coursemart-api/pkg/errors"
	"github.com/noah-isme/coursemart-api/pkg/response"
)

type adminResourceService interface {
	List(ctx context.Context, resource models.AdminResource) ([]models.ResourceRecord, error)
	Save(ctx context.Context, resource models.AdminResource, id models.ID, fields url.Values) ([]models.ResourceRecord, error)
	Delete(ctx context.Context, resource models.AdminResource, id models.ID) ([]models.ResourceRecord, error)
}

type userService interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	UpdateRole(ctx context.Context, actorID, userID models.ID, req models.UpdateRoleRequest) ([]models.User, error)
}

// AdminHandler backs the CRUD panels and user management.
type AdminHandler struct {
	resources adminResourceService
	users     userService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(resources adminResourceService, users userService) *AdminHandler {
	return &AdminHandler{resources: resources, users: users}
}

// ListResource godoc
// @Summary List records
// @Tags Admin
// @Produce json
// @Param resource path string true "categories|subcategories|courses|chapters|lectures"
// @Success 200 {object} response.Envelope
// @Router /admin/resources/{resource} [get]
func (h *AdminHandler) ListResource(c *gin.Context) {
	records, err := h.resources.List(c.Request.Context(), models.AdminResource(c.Param("resource")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// CreateResource godoc
// @Summary Create record
// @Tags Admin
// @Accept application/x-www-form-urlencoded
// @Produce json
// @Param resource path string true "Resource"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /admin/resources/{resource} [post]
func (h *AdminHandler) CreateResource(c *gin.Context) {
	fields, ok := formFields(c)
	if !ok {
		return
	}
	records, err := h.resources.Save(c.Request.Context(), models.AdminResource(c.Param("resource")), 0, fields)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, records)
}

// UpdateResource godoc
// @Summary Update record
// @Tags Admin
// @Accept application/x-www-form-urlencoded
// @Produce json
// @Param resource path string true "Resource"
// @Param id path int true "Record ID"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /admin/resources/{resource}/{id} [put]
func (h *AdminHandler) UpdateResource(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	fields, ok := formFields(c)
	if !ok {
		return
	}
	records, err := h.resources.Save(c.Request.Context(), models.AdminResource(c.Param("resource")), id, fields)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// DeleteResource godoc
// @Summary Delete record
// @Tags Admin
// @Produce json
// @Param resource path string true "Resource"
// @Param id path int true "Record ID"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /admin/resources/{resource}/{id} [delete]
func (h *AdminHandler) DeleteResource(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	records, err := h.resources.Delete(c.Request.Context(), models.AdminResource(c.Param("resource")), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// ListUsers godoc
// @Summary List users
// @Tags Admin
// @Produce json
// @Param role query string false "Role filter"
// @Success 200 {object} response.Envelope
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var filter models.UserFilter
	if role := strings.TrimSpace(c.Query("role")); role != "" {
		r := models.UserRole(strings.ToLower(role))
		filter.Role = &r
	}
	users, err := h.users.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, nil)
}

// UpdateRole godoc
// @Summary Change user role
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param payload body models.UpdateRoleRequest true "Role"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/users/{id}/role [put]
func (h *AdminHandler) UpdateRole(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid role payload"))
		return
	}
	users, err := h.users.UpdateRole(c.Request.Context(), claims.UserID, userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, nil)
}

func formFields(c *gin.Context) (url.Values, bool) {
	if err := c.Request.ParseForm(); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid form payload"))
		return nil, false
	}
	return c.Request.PostForm, true
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursemart-api/internal/models"
	appErrors "github.com/noah-isme/coursemart-api/pkg/errors"
	"github.com/noah-isme/coursemart-api/pkg/response"
)

type cartService interface {
	Load(ctx context.Context, userID models.ID) models.CartSnapshot
	Add(ctx context.Context, userID models.ID, req models.AddToCartRequest) (models.CartSnapshot, error)
	Remove(ctx context.Context, userID models.ID, courseID models.ID) (models.CartSnapshot, string, error)
}

// CartHandler exposes the shopping cart.
type CartHandler struct {
	cart cartService
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(cart cartService) *CartHandler {
	return &CartHandler{cart: cart}
}

// Get godoc
// @Summary Get cart
// @Description Reloads the cart from the commerce API and returns it with totals
// @Tags Cart
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, h.cart.Load(c.Request.Context(), claims.UserID), nil)
}

// Add godoc
// @Summary Add course to cart
// @Tags Cart
// @Accept json
// @Produce json
// @Param payload body models.AddToCartRequest true "Course"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /cart/items [post]
func (h *CartHandler) Add(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid cart payload"))
		return
	}
	snapshot, err := h.cart.Add(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}

// Remove godoc
// @Summary Remove course from cart
// @Tags Cart
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /cart/items/{courseId} [delete]
func (h *CartHandler) Remove(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	courseID, ok := pathID(c, "courseId")
	if !ok {
		return
	}
	snapshot, notice, err := h.cart.Remove(c.Request.Context(), claims.UserID, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil, response.Notice(notice))
}

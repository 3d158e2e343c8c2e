package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursemart-api/internal/middleware"
	"github.com/noah-isme/coursemart-api/internal/models"
	appErrors "github.com/noah-isme/coursemart-api/pkg/errors"
	"github.com/noah-isme/coursemart-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// currentUser writes a 401 and returns false when the request carries no claims.
func currentUser(c *gin.Context) (*models.JWTClaims, bool) {
	claims := claimsFromContext(c)
	if claims == nil || claims.UserID <= 0 {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return claims, true
}

// userIDOrZero returns the signed-in user id or 0 for anonymous requests.
func userIDOrZero(c *gin.Context) models.ID {
	if claims := claimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return 0
}

// pathID parses a positive numeric path parameter, writing a 400 on failure.
func pathID(c *gin.Context, name string) (models.ID, bool) {
	id, err := models.ParseID(c.Param(name))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid "+name))
		return 0, false
	}
	return id, true
}

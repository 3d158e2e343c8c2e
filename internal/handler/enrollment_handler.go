package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursemart-api/internal/models"
	"github.com/noah-isme/coursemart-api/pkg/response"
)

type enrollmentService interface {
	Status(ctx context.Context, userID, courseID models.ID) (*models.EnrollmentStatus, error)
}

// EnrollmentHandler answers whether a user owns or has carted a course.
type EnrollmentHandler struct {
	enrollments enrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// Status godoc
// @Summary Enrollment status
// @Tags Enrollments
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/enrollment [get]
func (h *EnrollmentHandler) Status(c *gin.Context) {
	courseID, ok := pathID(c, "courseId")
	if !ok {
		return
	}
	status, err := h.enrollments.Status(c.Request.Context(), userIDOrZero(c), courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursemart-api/internal/dto"
	"github.com/noah-isme/coursemart-api/internal/models"
	appErrors "github.com/noah-isme/coursemart-api/pkg/errors"
	"github.com/noah-isme/coursemart-api/pkg/response"
)

type progressService interface {
	EnrolledCourses(ctx context.Context, userID models.ID) ([]models.EnrolledCourse, error)
	Open(ctx context.Context, userID models.ID, slug string) (*models.CourseProgress, error)
	ObservePlayback(ctx context.Context, userID models.ID, slug string, lectureID models.ID, currentTime, duration float64) (*models.PlaybackResult, error)
	Reset(ctx context.Context, userID models.ID, slug string, lectureID models.ID) (*models.PlaybackResult, error)
}

// StudentHandler serves the student learning area.
type StudentHandler struct {
	progress progressService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(progress progressService) *StudentHandler {
	return &StudentHandler{progress: progress}
}

// Courses godoc
// @Summary Enrolled courses
// @Tags Student
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /student/courses [get]
func (h *StudentHandler) Courses(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	courses, err := h.progress.EnrolledCourses(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Course godoc
// @Summary Course player view
// @Tags Student
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/courses/{slug} [get]
func (h *StudentHandler) Course(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	progress, err := h.progress.Open(c.Request.Context(), claims.UserID, c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, progress, nil)
}

// Playback godoc
// @Summary Report playback position
// @Description Marks the lecture watched once more than the threshold has played
// @Tags Student
// @Accept json
// @Produce json
// @Param slug path string true "Course slug"
// @Param lectureId path int true "Lecture ID"
// @Param payload body dto.PlaybackTick true "Player position"
// @Success 200 {object} response.Envelope
// @Router /student/courses/{slug}/lectures/{lectureId}/progress [post]
func (h *StudentHandler) Playback(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	lectureID, ok := pathID(c, "lectureId")
	if !ok {
		return
	}
	var tick dto.PlaybackTick
	if err := c.ShouldBindJSON(&tick); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid playback payload"))
		return
	}
	result, err := h.progress.ObservePlayback(c.Request.Context(), claims.UserID, c.Param("slug"), lectureID, tick.CurrentTime, tick.Duration)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Reset godoc
// @Summary Mark lecture unwatched
// @Tags Student
// @Produce json
// @Param slug path string true "Course slug"
// @Param lectureId path int true "Lecture ID"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /student/courses/{slug}/lectures/{lectureId}/progress [delete]
func (h *StudentHandler) Reset(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	lectureID, ok := pathID(c, "lectureId")
	if !ok {
		return
	}
	result, err := h.progress.Reset(c.Request.Context(), claims.UserID, c.Param("slug"), lectureID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

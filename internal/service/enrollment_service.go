package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/coursemart-api/internal/models"
	appErrors "github.com/noah-isme/coursemart-api/pkg/errors"
)

type enrollmentChecker interface {
	IsEnrolled(ctx context.Context, enrollment models.Enrollment) (bool, error)
}

type cartReader interface {
	Items(ctx context.Context, userID models.ID) []models.CartItem
}

// EnrollmentService answers the course page question: owned, in cart, or neither.
type EnrollmentService struct {
	repo   enrollmentChecker
	cart   cartReader
	logger *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentChecker, cart cartReader, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, cart: cart, logger: logger}
}

// Status reports whether the user owns the course and whether it sits in the cart.
func (s *EnrollmentService) Status(ctx context.Context, userID, courseID models.ID) (*models.EnrollmentStatus, error) {
	if courseID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid course id")
	}
	status := &models.EnrollmentStatus{CourseID: courseID}
	if userID == 0 {
		return status, nil
	}

	enrolled, err := s.repo.IsEnrolled(ctx, models.Enrollment{UserID: userID, CourseID: courseID})
	if err != nil {
		s.logger.Warn("enrollment check failed",
			zap.Int64("user_id", int64(userID)),
			zap.Int64("course_id", int64(courseID)),
			zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to check enrollment")
	}
	status.Enrolled = enrolled
	if !enrolled {
		status.InCart = models.ContainsCourse(s.cart.Items(ctx, userID), courseID)
	}
	return status, nil
}

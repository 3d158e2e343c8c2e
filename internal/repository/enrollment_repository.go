package repository

import (
	"context"
	"fmt"
	"net/url"

	"github.com/noah-isme/coursemart-api/internal/models"
	"github.com/noah-isme/coursemart-api/pkg/commerce"
)

const (
	enrollmentCreatePath = "/api/enrollments/create_enrollment.php"
	enrollmentCheckPath  = "/api/enrollments/check_enrollment.php"
	enrolledCoursesPath  = "/api/user/fetch_enrolled_courses.php"
)

// EnrollmentRepository manages course enrollments on the commerce API.
type EnrollmentRepository struct {
	client *commerce.Client
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(client *commerce.Client) *EnrollmentRepository {
	return &EnrollmentRepository{client: client}
}

// Create enrolls the user in one course.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment models.Enrollment) error {
	var ack commerce.Status
	if err := r.client.PostJSON(ctx, enrollmentCreatePath, enrollment, &ack); err != nil {
		return fmt.Errorf("create enrollment course %d: %w", enrollment.CourseID, err)
	}
	if err := commerce.Check(enrollmentCreatePath, ack); err != nil {
		return fmt.Errorf("create enrollment course %d: %w", enrollment.CourseID, err)
	}
	return nil
}

// IsEnrolled reports whether the user already owns the course.
func (r *EnrollmentRepository) IsEnrolled(ctx context.Context, enrollment models.Enrollment) (bool, error) {
	var payload struct {
		commerce.Status
		Enrolled bool `json:"enrolled"`
	}
	if err := r.client.PostJSON(ctx, enrollmentCheckPath, enrollment, &payload); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	if err := commerce.Check(enrollmentCheckPath, payload.Status); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return payload.Enrolled, nil
}

// ListCourses returns the courses the user is enrolled in.
func (r *EnrollmentRepository) ListCourses(ctx context.Context, userID models.ID) ([]models.EnrolledCourse, error) {
	var payload struct {
		commerce.Status
		Courses []models.EnrolledCourse `json:"courses"`
	}
	if err := r.client.GetJSON(ctx, enrolledCoursesPath, url.Values{"user_id": {userID.String()}}, &payload); err != nil {
		return nil, fmt.Errorf("list enrolled courses: %w", err)
	}
	if err := commerce.Check(enrolledCoursesPath, payload.Status); err != nil {
		return nil, fmt.Errorf("list enrolled courses: %w", err)
	}
	if payload.Courses == nil {
		return []models.EnrolledCourse{}, nil
	}
	return payload.Courses, nil
}

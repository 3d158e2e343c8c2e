package models

// Enrollment grants a user access to a course once payment succeeds.
type Enrollment struct {
	UserID   ID `json:"user_id"`
	CourseID ID `json:"course_id"`
}

// EnrollmentStatus is the storefront view used by the course page button.
type EnrollmentStatus struct {
	CourseID ID   `json:"course_id"`
	Enrolled bool `json:"enrolled"`
	InCart   bool `json:"in_cart"`
}

// EnrolledCourse is a course listed on the student dashboard.
type EnrolledCourse struct {
	Course
	EnrolledAt string `json:"enrolled_at,omitempty"`
}

// BatchEnrollRequest enrolls a user in every course named by a verified transfer.
type BatchEnrollRequest struct {
	UserID  ID     `json:"user_id"`
	Courses string `json:"courses"`
}

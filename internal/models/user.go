package models

// UserRole represents the roles issued by the commerce API.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleStaff   UserRole = "staff"
	RoleStudent UserRole = "student"
)

// Valid reports whether the role is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleStudent:
		return true
	}
	return false
}

// User is the signed-in identity returned by the remote login endpoint.
type User struct {
	ID           ID       `json:"id"`
	FullName     string   `json:"fullname"`
	Email        string   `json:"email"`
	Role         UserRole `json:"role"`
	ProfileImage string   `json:"profile_image,omitempty"`
}

// UserFilter captures filtering criteria for the admin user list.
type UserFilter struct {
	Role   *UserRole
	Search string
}

// UpdateRoleRequest changes a user's role from the back-office.
type UpdateRoleRequest struct {
	Role UserRole `json:"role" validate:"required,oneof=admin staff student"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

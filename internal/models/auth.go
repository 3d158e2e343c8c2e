package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials forwarded to the remote login endpoint.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=4"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued access token and the session user.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        User      `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
	RedirectTo  string    `json:"redirect_to"`
}

// Session is the record kept in the session store for a signed-in user.
type Session struct {
	ID        string    `json:"id"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
}

// JWTClaims represents the JWT payload for access tokens. The token id is the session id.
type JWTClaims struct {
	UserID   ID       `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}

// SessionID returns the session id carried in the token.
func (c *JWTClaims) SessionID() string {
	if c == nil {
		return ""
	}
	return c.ID
}

// DashboardPath mirrors the post-login landing page for each role.
func DashboardPath(role UserRole) string {
	switch role {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleStaff:
		return "/staff/dashboard"
	default:
		return "/student/dashboard"
	}
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/noah-isme/coursemart-api/internal/models"
	"github.com/noah-isme/coursemart-api/pkg/commerce"
)

const (
	loginPath      = "/login.php"
	userListPath   = "/fetch_users.php"
	updateRolePath = "/update_role.php"
)

// ErrInvalidCredentials is returned when the commerce API rejects a login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository authenticates and manages users through the commerce API.
type UserRepository struct {
	client *commerce.Client
}

// NewUserRepository constructs the repository.
func NewUserRepository(client *commerce.Client) *UserRepository {
	return &UserRepository{client: client}
}

// Authenticate forwards credentials to the remote login endpoint.
func (r *UserRepository) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var payload struct {
		commerce.Status
		User *models.User `json:"user"`
	}
	form := url.Values{"email": {email}, "password": {password}}
	if err := r.client.PostForm(ctx, loginPath, form, &payload); err != nil {
		if apiErr, ok := commerce.IsAPIError(err); ok && apiErr.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, apiErr.Message)
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if !payload.OK() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, payload.Reason())
	}
	if payload.User == nil || payload.User.ID == 0 {
		return nil, fmt.Errorf("login: %w", &commerce.APIError{Endpoint: loginPath, Message: "login response missing user"})
	}
	return payload.User, nil
}

// List returns every user for the back-office, optionally narrowed by role.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	var payload struct {
		commerce.Status
		Users []models.User `json:"users"`
	}
	if err := r.client.GetJSON(ctx, userListPath, nil, &payload); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if err := commerce.Check(userListPath, payload.Status); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]models.User, 0, len(payload.Users))
	for _, user := range payload.Users {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		if !containsFold(user.FullName, filter.Search) && !containsFold(user.Email, filter.Search) {
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

// UpdateRole changes a user's role.
func (r *UserRepository) UpdateRole(ctx context.Context, id models.ID, role models.UserRole) error {
	body := struct {
		ID   models.ID       `json:"id"`
		Role models.UserRole `json:"role"`
	}{ID: id, Role: role}
	var ack commerce.Status
	if err := r.client.PostJSON(ctx, updateRolePath, body, &ack); err != nil {
		return fmt.Errorf("update role user %d: %w", id, err)
	}
	if err := commerce.Check(updateRolePath, ack); err != nil {
		return fmt.Errorf("update role user %d: %w", id, err)
	}
	return nil
}

func containsFold(value, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(strings.TrimSpace(term)))
}

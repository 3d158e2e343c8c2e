package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coursemart-api/internal/models"
	appErrors "github.com/noah-isme/coursemart-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	UpdateRole(ctx context.Context, id models.ID, role models.UserRole) error
}

// UserService handles back-office user management.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates a new user service instance.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, validator: validate, logger: logger}
}

// List returns users matching the filter.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	if filter.Role != nil && !filter.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid role filter")
	}
	users, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to list users")
	}
	return users, nil
}

// UpdateRole changes a user's role. Admins cannot change their own role.
func (s *UserService) UpdateRole(ctx context.Context, actorID, userID models.ID, req models.UpdateRoleRequest) ([]models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid role")
	}
	if userID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid user id")
	}
	if actorID == userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot change your own role")
	}
	if err := s.repo.UpdateRole(ctx, userID, req.Role); err != nil {
		s.logger.Warn("update role failed", zap.Int64("user_id", int64(userID)), zap.Error(err))
		return nil, mutationError(err, "Failed to update role: ", "Error updating role.")
	}
	s.logger.Info("user role updated",
		zap.Int64("user_id", int64(userID)),
		zap.String("role", string(req.Role)),
		zap.Int64("actor_id", int64(actorID)))
	return s.List(ctx, models.UserFilter{})
}

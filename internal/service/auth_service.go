package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/coursemart-api/internal/models"
	"github.com/noah-isme/coursemart-api/internal/repository"
	appErrors "github.com/noah-isme/coursemart-api/pkg/errors"
)

type authUserRepository interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

type sessionStore interface {
	Save(ctx context.Context, session *models.Session) error
	Find(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
	Audience          []string
}

// AuthService signs users in against the commerce API and tracks their sessions.
type AuthService struct {
	users     authUserRepository
	sessions  sessionStore
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
	onLogout  []func(models.ID)
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users authUserRepository, sessions sessionStore, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		sessions:  sessions,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Login forwards credentials to the commerce API, stores the resulting identity and
// issues an access token bound to the session.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	user, err := s.users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCredentials) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		s.logger.Warn("remote login failed", zap.String("email", req.Email), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "login service unavailable")
	}
	if !user.Role.Valid() {
		user.Role = models.RoleStudent
	}

	issuedAt := s.now()
	session := &models.Session{
		ID:        uuid.NewString(),
		User:      *user,
		CreatedAt: issuedAt,
		ExpiresAt: issuedAt.Add(s.config.AccessTokenExpiry),
		IPAddress: req.IP,
		UserAgent: req.UserAgent,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session")
	}

	accessToken, err := s.generateAccessToken(session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.logger.Info("user signed in", zap.Int64("user_id", int64(user.ID)), zap.String("role", string(user.Role)))

	return &models.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		User:        *user,
		IssuedAt:    issuedAt,
		RedirectTo:  models.DashboardPath(user.Role),
	}, nil
}

// OnLogout registers callbacks run with the user id after a session ends. Must be
// called before the service starts handling requests.
func (s *AuthService) OnLogout(fns ...func(models.ID)) {
	s.onLogout = append(s.onLogout, fns...)
}

// Logout destroys the session behind the token. Unknown sessions are ignored.
func (s *AuthService) Logout(ctx context.Context, claims *models.JWTClaims) error {
	if claims == nil || claims.SessionID() == "" {
		return appErrors.Clone(appErrors.ErrUnauthorized, "missing session")
	}
	if err := s.sessions.Delete(ctx, claims.SessionID()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to end session")
	}
	for _, fn := range s.onLogout {
		fn(claims.UserID)
	}
	return nil
}

// Me returns the user stored in the session.
func (s *AuthService) Me(ctx context.Context, claims *models.JWTClaims) (*models.User, error) {
	session, err := s.Session(ctx, claims)
	if err != nil {
		return nil, err
	}
	user := session.User
	return &user, nil
}

// Session loads the live session for the token claims.
func (s *AuthService) Session(ctx context.Context, claims *models.JWTClaims) (*models.Session, error) {
	if claims == nil || claims.SessionID() == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing session")
	}
	session, err := s.sessions.Find(ctx, claims.SessionID())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if session.User.ID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session does not match token")
	}
	return session, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) generateAccessToken(session *models.Session) (string, error) {
	claims := &models.JWTClaims{
		UserID:   session.User.ID,
		Role:     session.User.Role,
		Email:    session.User.Email,
		FullName: session.User.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Issuer:    s.config.Issuer,
			Subject:   session.User.ID.String(),
			Audience:  s.config.Audience,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			NotBefore: jwt.NewNumericDate(session.CreatedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.AccessTokenSecret))
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/fieldlab-api/internal/models"
	"github.com/noah-isme/fieldlab-api/internal/repository"
	appErrors "github.com/noah-isme/fieldlab-api/pkg/errors"
)

type authUserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	CountApprovedAdmins(ctx context.Context, activeOnly bool) (int64, error)
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
	AccountStatusTTL  time.Duration
}

// AuthService provides authentication use cases.
type AuthService struct {
	repo      authUserRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
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
		repo:      repo,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       time.Now,
	}
}

// Login verifies credentials and then the approval gate. A correct password on
// an unapproved or inactive account still fails, with a code distinct from
// INVALID_CREDENTIALS.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "username and password are required")
	}

	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, s.loginFailure(appErrors.Clone(appErrors.ErrInvalidCredentials, ""), req.Username)
		}
		return nil, appErrors.Internal(err, "failed to fetch user")
	}

	if !checkPassword(user.PasswordHash, req.Password) {
		return nil, s.loginFailure(appErrors.Clone(appErrors.ErrInvalidCredentials, ""), req.Username)
	}
	if !user.IsApproved {
		return nil, s.loginFailure(appErrors.Clone(appErrors.ErrPendingApproval, "account is pending admin approval"), req.Username)
	}
	if !user.IsActive {
		return nil, s.loginFailure(appErrors.Clone(appErrors.ErrInactiveAccount, "account has been deactivated"), req.Username)
	}

	issuedAt := s.now().UTC()
	accessToken, err := s.generateAccessToken(user, issuedAt)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create access token")
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID, issuedAt); err != nil {
		s.logger.Warn("failed to update last login", zap.String("user_id", user.ID), zap.Error(err))
	}
	s.metrics.RecordLogin("SUCCESS")

	return &models.LoginResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:    issuedAt,
		User:        models.NewUserInfo(*user),
	}, nil
}

func (s *AuthService) loginFailure(err *appErrors.Error, username string) error {
	s.metrics.RecordLogin(err.Code)
	s.logger.Info("login rejected", zap.String("username", username), zap.String("code", err.Code))
	return err
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
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// AccountStatus returns the approval flags of an account, served from cache when
// possible. Admin actions evict the entry.
func (s *AuthService) AccountStatus(ctx context.Context, userID string) (*models.AccountStatus, error) {
	key := accountStatusKey(userID)
	var status models.AccountStatus
	if s.cache.Get(ctx, key, &status) {
		return &status, nil
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account no longer exists")
		}
		return nil, appErrors.Internal(err, "failed to load account")
	}
	status = models.AccountStatus{IsApproved: user.IsApproved, IsActive: user.IsActive, Role: user.Role}
	s.cache.Set(ctx, key, status, s.config.AccountStatusTTL)
	return &status, nil
}

// VerifyAccount enforces the approval gate on an already issued token.
func (s *AuthService) VerifyAccount(ctx context.Context, claims *models.JWTClaims) error {
	status, err := s.AccountStatus(ctx, claims.UserID)
	if err != nil {
		return err
	}
	switch {
	case !status.IsApproved:
		return appErrors.Clone(appErrors.ErrPendingApproval, "account is pending admin approval")
	case !status.IsActive:
		return appErrors.Clone(appErrors.ErrInactiveAccount, "account has been deactivated")
	case status.Role != claims.Role:
		return appErrors.Clone(appErrors.ErrUnauthorized, "account role changed, sign in again")
	}
	return nil
}

// Profile returns the account of the caller.
func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Internal(err, "failed to load user")
	}
	return user, nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "current password and a new password of at least 6 characters are required")
	}

	user, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if !checkPassword(user.PasswordHash, req.CurrentPassword) {
		return appErrors.Clone(appErrors.ErrValidation, "current password is incorrect")
	}

	newHash, err := hashPassword(req.NewPassword)
	if err != nil {
		return passwordHashError(err)
	}
	if err := s.repo.UpdatePassword(ctx, userID, newHash, s.now().UTC()); err != nil {
		return appErrors.Internal(err, "failed to update password")
	}
	s.logger.Info("password changed", zap.String("user_id", userID))
	return nil
}

// AdminStatus reports whether an approved, active administrator exists.
func (s *AuthService) AdminStatus(ctx context.Context) (*models.AdminStatus, error) {
	count, err := s.repo.CountApprovedAdmins(ctx, true)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check admin status")
	}
	return &models.AdminStatus{HasApprovedAdmins: count > 0, ApprovedAdminCount: count}, nil
}

func (s *AuthService) generateAccessToken(user *models.User, issuedAt time.Time) (string, error) {
	claims := &models.JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.AccessTokenSecret))
}

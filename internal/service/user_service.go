package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/fieldlab-api/internal/models"
	"github.com/noah-isme/fieldlab-api/internal/repository"
	appErrors "github.com/noah-isme/fieldlab-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	CountApprovedAdmins(ctx context.Context, activeOnly bool) (int64, error)
	Create(ctx context.Context, user *models.User) error
	UpdateStatus(ctx context.Context, id string, update models.UserStatusUpdate, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// UserService handles registration and the administrator approval workflow.
type UserService struct {
	repo      userRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger, now: time.Now}
}

// Register creates an account through the registration gate. The first admin
// and every patient are approved on creation; further admin registrations are
// refused and all other roles wait for an administrator.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "username, password, role, first name and last name are required")
	}
	if !req.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid role")
	}

	if _, err := s.repo.FindByUsername(ctx, req.Username); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, appErrors.Internal(err, "failed to check username")
	}

	approved := req.Role == models.RolePatient
	if req.Role == models.RoleAdmin {
		admins, err := s.repo.CountApprovedAdmins(ctx, false)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to count administrators")
		}
		if admins > 0 {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "admin registration is closed, contact an existing administrator")
		}
		approved = true
	}

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		return nil, passwordHashError(err)
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: passwordHash,
		Role:         req.Role,
		FirstName:    strings.TrimSpace(req.FirstName),
		MiddleName:   nonEmpty(req.MiddleName),
		LastName:     strings.TrimSpace(req.LastName),
		Suffix:       nonEmpty(req.Suffix),
		Email:        nonEmpty(req.Email),
		IsApproved:   approved,
		IsActive:     approved,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "username already exists")
		}
		return nil, appErrors.Internal(err, "failed to create user")
	}

	s.metrics.RecordRegistration(string(user.Role), approved)
	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.Bool("approved", approved),
	)
	return user, nil
}

// ApplyUserAction runs an administrator decision. Reject deletes the account;
// the returned user is nil in that case.
func (s *UserService) ApplyUserAction(ctx context.Context, userID string, action models.UserAction) (*models.User, error) {
	if !action.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid action")
	}

	var err error
	yes, no := true, false
	switch action {
	case models.UserActionReject:
		err = s.repo.Delete(ctx, userID)
	case models.UserActionApprove:
		err = s.repo.UpdateStatus(ctx, userID, models.UserStatusUpdate{IsApproved: &yes, IsActive: &yes}, s.now().UTC())
	case models.UserActionActivate:
		err = s.repo.UpdateStatus(ctx, userID, models.UserStatusUpdate{IsActive: &yes}, s.now().UTC())
	case models.UserActionDeactivate:
		err = s.repo.UpdateStatus(ctx, userID, models.UserStatusUpdate{IsActive: &no}, s.now().UTC())
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Internal(err, "failed to apply user action")
	}

	s.cache.Delete(ctx, accountStatusKey(userID))
	s.metrics.RecordUserAction(string(action))
	s.logger.Info("user action applied", zap.String("user_id", userID), zap.String("action", string(action)))

	if action == models.UserActionReject {
		return nil, nil
	}
	return s.Get(ctx, userID)
}

// List returns paginated users and pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list users")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return users, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Internal(err, "failed to load user")
	}
	return user, nil
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

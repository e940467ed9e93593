package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/agape-academy/academy-api/internal/authz"
	"github.com/agape-academy/academy-api/internal/models"
	"github.com/agape-academy/academy-api/internal/repository"
	appErrors "github.com/agape-academy/academy-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUID(ctx context.Context, uid string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id string, changes map[string]interface{}) (*models.User, error)
}

type identityInvalidator interface {
	Invalidate(ctx context.Context, uid string)
}

// UserService handles user administration workflows.
type UserService struct {
	repo       userRepository
	identities identityInvalidator
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(repo userRepository, identities identityInvalidator, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, identities: identities, validator: validate, logger: logger}
}

// CreateUserRequest describes the create payload.
type CreateUserRequest struct {
	UID         string `json:"uid"`
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"displayName" validate:"required,min=2"`
	Role        string `json:"role"`
}

// UpdateUserRequest describes the sparse update payload. Role changes are
// admin-gated in Update.
type UpdateUserRequest struct {
	Email       *string `json:"email" validate:"omitempty,email"`
	DisplayName *string `json:"displayName" validate:"omitempty,min=2"`
	Role        *string `json:"role"`
}

// List returns users with pagination. Admin only at the route layer.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to list users")
	}
	return users, models.NewPagination(filter.Page, filter.Limit, total), nil
}

// Get returns a user. Non-admin callers may only read themselves.
func (s *UserService) Get(ctx context.Context, identity *models.Identity, id string) (*models.User, error) {
	if !authz.CanView(identity.Role, identity.UserID, id) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, userError(err)
	}
	return user, nil
}

// Create registers a new user. Duplicate emails conflict.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	role := models.UserRole(req.Role)
	if req.Role == "" {
		role = models.RoleStudent
	}
	if !role.Valid() {
		return nil, appErrors.Validation("role must be one of STUDENT, TEACHER, ADMIN, SUPER_ADMIN")
	}
	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a user with this email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, userError(err)
	}

	user := &models.User{
		UID:         req.UID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Role:        role,
		IsActive:    true,
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to create user")
	}
	return created, nil
}

// Update edits a user. Users may edit themselves; role changes require an
// admin. Email changes check for duplicates.
func (s *UserService) Update(ctx context.Context, identity *models.Identity, id string, req UpdateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if !authz.CanMutate(identity.Role, identity.UserID, id) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, userError(err)
	}

	changes := map[string]interface{}{}
	if req.Email != nil && *req.Email != user.Email {
		if _, err := s.repo.FindByEmail(ctx, *req.Email); err == nil {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a user with this email already exists")
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, userError(err)
		}
		changes["email"] = *req.Email
	}
	if req.DisplayName != nil {
		changes["displayName"] = *req.DisplayName
	}
	if req.Role != nil {
		if !identity.Role.IsAdmin() {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can change roles")
		}
		role := models.UserRole(*req.Role)
		if !role.Valid() {
			return nil, appErrors.Validation("role must be one of STUDENT, TEACHER, ADMIN, SUPER_ADMIN")
		}
		changes["role"] = role
	}
	if len(changes) == 0 {
		return user, nil
	}

	updated, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, userError(err)
	}
	if s.identities != nil {
		s.identities.Invalidate(ctx, updated.UID)
	}
	return updated, nil
}

// Deactivate disables the account. Admin only, and never your own account.
func (s *UserService) Deactivate(ctx context.Context, identity *models.Identity, id string) (*models.User, error) {
	allowed, self := authz.CanDeactivate(identity.Role, identity.UserID, id)
	if self {
		return nil, appErrors.Validation("you cannot deactivate your own account")
	}
	if !allowed {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	updated, err := s.repo.Update(ctx, id, map[string]interface{}{"isActive": false})
	if err != nil {
		return nil, userError(err)
	}
	if s.identities != nil {
		s.identities.Invalidate(ctx, updated.UID)
	}
	return updated, nil
}

// Activate re-enables the account. Admin only.
func (s *UserService) Activate(ctx context.Context, identity *models.Identity, id string) (*models.User, error) {
	if !identity.Role.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	updated, err := s.repo.Update(ctx, id, map[string]interface{}{"isActive": true})
	if err != nil {
		return nil, userError(err)
	}
	if s.identities != nil {
		s.identities.Invalidate(ctx, updated.UID)
	}
	return updated, nil
}

func userError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "user backend request failed")
}

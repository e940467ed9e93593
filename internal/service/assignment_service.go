package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/agape-academy/academy-api/internal/authz"
	"github.com/agape-academy/academy-api/internal/models"
	"github.com/agape-academy/academy-api/internal/repository"
	appErrors "github.com/agape-academy/academy-api/pkg/errors"
)

type assignmentRepository interface {
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error)
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) (*models.Assignment, error)
	Update(ctx context.Context, id string, changes map[string]interface{}) (*models.Assignment, error)
	Delete(ctx context.Context, id string) error
}

type assignmentCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// AssignmentService handles assignment workflows. Assignments belong to a
// course and are owned by its instructor.
type AssignmentService struct {
	repo      assignmentRepository
	courses   assignmentCourseReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs the service.
func NewAssignmentService(repo assignmentRepository, courses assignmentCourseReader, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, courses: courses, validator: validate, logger: logger}
}

// CreateAssignmentRequest describes the create payload.
type CreateAssignmentRequest struct {
	Title        string    `json:"title" validate:"required,min=3"`
	Description  string    `json:"description" validate:"required,min=10"`
	Instructions string    `json:"instructions" validate:"required,min=10"`
	DueDate      time.Time `json:"dueDate" validate:"required,futuredate"`
	MaxPoints    int       `json:"maxPoints" validate:"required,min=1,max=1000"`
	CourseID     string    `json:"courseId" validate:"required"`
}

// UpdateAssignmentRequest describes the sparse update payload.
type UpdateAssignmentRequest struct {
	Title        *string    `json:"title" validate:"omitempty,min=3"`
	Description  *string    `json:"description" validate:"omitempty,min=10"`
	Instructions *string    `json:"instructions" validate:"omitempty,min=10"`
	DueDate      *time.Time `json:"dueDate" validate:"omitempty,futuredate"`
	MaxPoints    *int       `json:"maxPoints" validate:"omitempty,min=1,max=1000"`
}

// List returns assignments with pagination.
func (s *AssignmentService) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, *models.Pagination, error) {
	assignments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to list assignments")
	}
	return assignments, models.NewPagination(filter.Page, filter.Limit, total), nil
}

// Get returns an assignment by id.
func (s *AssignmentService) Get(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, assignmentError(err)
	}
	return assignment, nil
}

// Create registers a new assignment. The caller must own the course or be
// an admin.
func (s *AssignmentService) Create(ctx context.Context, identity *models.Identity, req CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, assignmentError(err)
	}
	if !authz.CanMutate(identity.Role, identity.UserID, course.Instructor.ID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}

	assignment := &models.Assignment{
		Title:        req.Title,
		Description:  req.Description,
		Instructions: req.Instructions,
		DueDate:      req.DueDate,
		MaxPoints:    req.MaxPoints,
		Course:       models.CourseRef{ID: course.ID},
		Teacher:      models.UserRef{ID: identity.UserID},
	}
	created, err := s.repo.Create(ctx, assignment)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to create assignment")
	}
	return created, nil
}

// Update applies a sparse change set. Only the owning teacher or an admin
// may edit.
func (s *AssignmentService) Update(ctx context.Context, identity *models.Identity, id string, req UpdateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, assignmentError(err)
	}
	if !authz.CanMutate(identity.Role, identity.UserID, assignment.Teacher.ID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}

	changes := map[string]interface{}{}
	if req.Title != nil {
		changes["title"] = *req.Title
	}
	if req.Description != nil {
		changes["description"] = *req.Description
	}
	if req.Instructions != nil {
		changes["instructions"] = *req.Instructions
	}
	if req.DueDate != nil {
		changes["dueDate"] = *req.DueDate
	}
	if req.MaxPoints != nil {
		changes["maxPoints"] = *req.MaxPoints
	}
	if len(changes) == 0 {
		return assignment, nil
	}

	updated, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, assignmentError(err)
	}
	return updated, nil
}

// Delete removes an assignment. Only the owning teacher or an admin may
// delete.
func (s *AssignmentService) Delete(ctx context.Context, identity *models.Identity, id string) error {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return assignmentError(err)
	}
	if !authz.CanMutate(identity.Role, identity.UserID, assignment.Teacher.ID) {
		return appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return assignmentError(err)
	}
	return nil
}

func assignmentError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "assignment backend request failed")
}

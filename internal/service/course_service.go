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

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) (*models.Course, error)
	Update(ctx context.Context, id string, changes map[string]interface{}) (*models.Course, error)
	Delete(ctx context.Context, id string) error
	ListEnrollments(ctx context.Context, courseID, studentID string, page models.PageQuery) ([]models.Enrollment, int, error)
	FindEnrollment(ctx context.Context, courseID, studentID string) (*models.Enrollment, error)
	CountEnrollments(ctx context.Context, courseID string) (int, error)
	CreateEnrollment(ctx context.Context, courseID, studentID string) (*models.Enrollment, error)
	UpdateEnrollmentProgress(ctx context.Context, enrollmentID string, lessonProgress int) (*models.Enrollment, error)
	DeleteEnrollment(ctx context.Context, enrollmentID string) error
}

// CourseService handles course and enrollment workflows.
type CourseService struct {
	repo      courseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs the service.
func NewCourseService(repo courseRepository, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, validator: validate, logger: logger}
}

// CreateCourseRequest describes the create payload.
type CreateCourseRequest struct {
	Title       string `json:"title" validate:"required,min=3"`
	Description string `json:"description" validate:"required,min=10"`
	Syllabus    string `json:"syllabus" validate:"required,min=10"`
	Category    string `json:"category" validate:"required"`
	Duration    int    `json:"duration" validate:"required,min=1,max=52"`
	MaxStudents int    `json:"maxStudents" validate:"required,min=1,max=500"`
}

// UpdateCourseRequest describes the sparse update payload.
type UpdateCourseRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3"`
	Description *string `json:"description" validate:"omitempty,min=10"`
	Syllabus    *string `json:"syllabus" validate:"omitempty,min=10"`
	Category    *string `json:"category"`
	Duration    *int    `json:"duration" validate:"omitempty,min=1,max=52"`
	MaxStudents *int    `json:"maxStudents" validate:"omitempty,min=1,max=500"`
	IsActive    *bool   `json:"isActive"`
}

// List returns courses with pagination.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to list courses")
	}
	return courses, models.NewPagination(filter.Page, filter.Limit, total), nil
}

// Get returns a course by id.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, courseError(err)
	}
	return course, nil
}

// Create registers a new course owned by the calling instructor.
func (s *CourseService) Create(ctx context.Context, identity *models.Identity, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	course := &models.Course{
		Title:       req.Title,
		Description: req.Description,
		Syllabus:    req.Syllabus,
		Category:    req.Category,
		Duration:    req.Duration,
		MaxStudents: req.MaxStudents,
		IsActive:    true,
		Instructor:  models.UserRef{ID: identity.UserID},
	}
	created, err := s.repo.Create(ctx, course)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to create course")
	}
	return created, nil
}

// Update applies a sparse change set. Only the instructor or an admin may edit.
func (s *CourseService) Update(ctx context.Context, identity *models.Identity, id string, req UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, courseError(err)
	}
	if !authz.CanMutate(identity.Role, identity.UserID, course.Instructor.ID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}

	changes := map[string]interface{}{}
	if req.Title != nil {
		changes["title"] = *req.Title
	}
	if req.Description != nil {
		changes["description"] = *req.Description
	}
	if req.Syllabus != nil {
		changes["syllabus"] = *req.Syllabus
	}
	if req.Category != nil {
		changes["category"] = *req.Category
	}
	if req.Duration != nil {
		changes["duration"] = *req.Duration
	}
	if req.MaxStudents != nil {
		changes["maxStudents"] = *req.MaxStudents
	}
	if req.IsActive != nil {
		changes["isActive"] = *req.IsActive
	}
	if len(changes) == 0 {
		return course, nil
	}

	updated, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, courseError(err)
	}
	return updated, nil
}

// Delete removes a course. Only the instructor or an admin may delete.
func (s *CourseService) Delete(ctx context.Context, identity *models.Identity, id string) error {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return courseError(err)
	}
	if !authz.CanMutate(identity.Role, identity.UserID, course.Instructor.ID) {
		return appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return courseError(err)
	}
	return nil
}

// Enroll links the student to the course. Duplicate enrollments conflict
// and full courses are rejected.
func (s *CourseService) Enroll(ctx context.Context, identity *models.Identity, courseID string) (*models.Enrollment, error) {
	course, err := s.repo.FindByID(ctx, courseID)
	if err != nil {
		return nil, courseError(err)
	}
	if !course.IsActive {
		return nil, appErrors.Validation("course is not open for enrollment")
	}
	if _, err := s.repo.FindEnrollment(ctx, courseID, identity.UserID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "already enrolled in this course")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, courseError(err)
	}
	enrolled, err := s.repo.CountEnrollments(ctx, courseID)
	if err != nil {
		return nil, courseError(err)
	}
	if enrolled >= course.MaxStudents {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course is full")
	}
	enrollment, err := s.repo.CreateEnrollment(ctx, courseID, identity.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to enroll")
	}
	return enrollment, nil
}

// Unenroll removes the caller's enrollment. Admins may unenroll any student.
func (s *CourseService) Unenroll(ctx context.Context, identity *models.Identity, courseID, studentID string) error {
	if studentID == "" {
		studentID = identity.UserID
	}
	if !authz.CanMutate(identity.Role, identity.UserID, studentID) {
		return appErrors.Clone(appErrors.ErrForbidden, "")
	}
	enrollment, err := s.repo.FindEnrollment(ctx, courseID, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return courseError(err)
	}
	if err := s.repo.DeleteEnrollment(ctx, enrollment.ID); err != nil {
		return courseError(err)
	}
	return nil
}

// ListEnrollments returns a course roster. Students may list only their own
// enrollments.
func (s *CourseService) ListEnrollments(ctx context.Context, identity *models.Identity, courseID, studentID string, page models.PageQuery) ([]models.Enrollment, *models.Pagination, error) {
	if !identity.Role.IsAdmin() && identity.Role != models.RoleTeacher {
		studentID = identity.UserID
	}
	enrollments, total, err := s.repo.ListEnrollments(ctx, courseID, studentID, page)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to list enrollments")
	}
	return enrollments, models.NewPagination(page.Page, page.Limit, total), nil
}

// UpdateProgress moves the student's lesson-progress pointer.
func (s *CourseService) UpdateProgress(ctx context.Context, identity *models.Identity, courseID string, lessonProgress int) (*models.Enrollment, error) {
	if lessonProgress < 0 {
		return nil, appErrors.Validation("lessonProgress must be zero or positive")
	}
	enrollment, err := s.repo.FindEnrollment(ctx, courseID, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, courseError(err)
	}
	updated, err := s.repo.UpdateEnrollmentProgress(ctx, enrollment.ID, lessonProgress)
	if err != nil {
		return nil, courseError(err)
	}
	return updated, nil
}

func courseError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "course backend request failed")
}

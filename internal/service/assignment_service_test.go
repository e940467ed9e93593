package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agape-academy/academy-api/internal/models"
	"github.com/agape-academy/academy-api/internal/repository"
	appErrors "github.com/agape-academy/academy-api/pkg/errors"
)

type mockAssignmentRepo struct {
	assignments map[string]models.Assignment
}

func (m *mockAssignmentRepo) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error) {
	var list []models.Assignment
	for _, a := range m.assignments {
		list = append(list, a)
	}
	return list, len(list), nil
}

func (m *mockAssignmentRepo) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	if a, ok := m.assignments[id]; ok {
		return &a, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) (*models.Assignment, error) {
	if m.assignments == nil {
		m.assignments = make(map[string]models.Assignment)
	}
	assignment.ID = "new-assignment"
	m.assignments[assignment.ID] = *assignment
	return assignment, nil
}

func (m *mockAssignmentRepo) Update(ctx context.Context, id string, changes map[string]interface{}) (*models.Assignment, error) {
	a, ok := m.assignments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	m.assignments[id] = a
	return &a, nil
}

func (m *mockAssignmentRepo) Delete(ctx context.Context, id string) error {
	delete(m.assignments, id)
	return nil
}

type mockCourseReader struct {
	courses map[string]models.Course
}

func (m *mockCourseReader) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return &c, nil
	}
	return nil, repository.ErrNotFound
}

func validAssignmentRequest() CreateAssignmentRequest {
	return CreateAssignmentRequest{
		Title:        "Exegesis Paper",
		Description:  "Write a short paper on the assigned passage.",
		Instructions: "Cite at least three commentaries in your analysis.",
		DueDate:      time.Now().Add(14 * 24 * time.Hour),
		MaxPoints:    100,
		CourseID:     "c1",
	}
}

func TestAssignmentServiceCreate(t *testing.T) {
	courses := &mockCourseReader{courses: map[string]models.Course{
		"c1": {ID: "c1", Instructor: models.UserRef{ID: "t1"}},
	}}
	svc := NewAssignmentService(&mockAssignmentRepo{}, courses, nil, zap.NewNop())

	assignment, err := svc.Create(context.Background(), &models.Identity{UserID: "t1", Role: models.RoleTeacher}, validAssignmentRequest())
	require.NoError(t, err)
	assert.Equal(t, "c1", assignment.Course.ID)
	assert.Equal(t, "t1", assignment.Teacher.ID)
}

func TestAssignmentServicePastDueDate(t *testing.T) {
	courses := &mockCourseReader{courses: map[string]models.Course{
		"c1": {ID: "c1", Instructor: models.UserRef{ID: "t1"}},
	}}
	svc := NewAssignmentService(&mockAssignmentRepo{}, courses, nil, zap.NewNop())

	req := validAssignmentRequest()
	req.DueDate = time.Now().Add(-time.Hour)
	_, err := svc.Create(context.Background(), &models.Identity{UserID: "t1", Role: models.RoleTeacher}, req)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
	assert.Contains(t, strings.Join(appErr.Details, "; "), "dueDate")
}

func TestAssignmentServiceCreateForeignCourse(t *testing.T) {
	courses := &mockCourseReader{courses: map[string]models.Course{
		"c1": {ID: "c1", Instructor: models.UserRef{ID: "t1"}},
	}}
	svc := NewAssignmentService(&mockAssignmentRepo{}, courses, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), &models.Identity{UserID: "t2", Role: models.RoleTeacher}, validAssignmentRequest())
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Status)

	_, err = svc.Create(context.Background(), &models.Identity{UserID: "admin", Role: models.RoleAdmin}, validAssignmentRequest())
	assert.NoError(t, err, "admins may create assignments on any course")
}

func TestAssignmentServiceCreateUnknownCourse(t *testing.T) {
	svc := NewAssignmentService(&mockAssignmentRepo{}, &mockCourseReader{}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), &models.Identity{UserID: "t1", Role: models.RoleTeacher}, validAssignmentRequest())
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Status)
}

func TestAssignmentServiceUpdateOwnership(t *testing.T) {
	repo := &mockAssignmentRepo{assignments: map[string]models.Assignment{
		"a1": {ID: "a1", Teacher: models.UserRef{ID: "t1"}},
	}}
	svc := NewAssignmentService(repo, &mockCourseReader{}, nil, zap.NewNop())
	points := 50

	_, err := svc.Update(context.Background(), &models.Identity{UserID: "t2", Role: models.RoleTeacher}, "a1", UpdateAssignmentRequest{MaxPoints: &points})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Status)
}

package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agape-academy/academy-api/internal/models"
	"github.com/agape-academy/academy-api/internal/repository"
	appErrors "github.com/agape-academy/academy-api/pkg/errors"
)

type mockCourseRepo struct {
	courses     map[string]models.Course
	enrollments map[string]models.Enrollment
	unenrolled  []string
	progress    map[string]int
}

func (m *mockCourseRepo) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	var list []models.Course
	for _, c := range m.courses {
		list = append(list, c)
	}
	return list, len(list), nil
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return &c, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockCourseRepo) Create(ctx context.Context, course *models.Course) (*models.Course, error) {
	if m.courses == nil {
		m.courses = make(map[string]models.Course)
	}
	course.ID = "new-course"
	m.courses[course.ID] = *course
	return course, nil
}

func (m *mockCourseRepo) Update(ctx context.Context, id string, changes map[string]interface{}) (*models.Course, error) {
	c, ok := m.courses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if active, ok := changes["isActive"].(bool); ok {
		c.IsActive = active
	}
	m.courses[id] = c
	return &c, nil
}

func (m *mockCourseRepo) Delete(ctx context.Context, id string) error {
	delete(m.courses, id)
	return nil
}

func (m *mockCourseRepo) ListEnrollments(ctx context.Context, courseID, studentID string, page models.PageQuery) ([]models.Enrollment, int, error) {
	var list []models.Enrollment
	for _, e := range m.enrollments {
		if e.Course.ID == courseID && (studentID == "" || e.Student.ID == studentID) {
			list = append(list, e)
		}
	}
	return list, len(list), nil
}

func (m *mockCourseRepo) FindEnrollment(ctx context.Context, courseID, studentID string) (*models.Enrollment, error) {
	for _, e := range m.enrollments {
		if e.Course.ID == courseID && e.Student.ID == studentID {
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockCourseRepo) CountEnrollments(ctx context.Context, courseID string) (int, error) {
	count := 0
	for _, e := range m.enrollments {
		if e.Course.ID == courseID {
			count++
		}
	}
	return count, nil
}

func (m *mockCourseRepo) CreateEnrollment(ctx context.Context, courseID, studentID string) (*models.Enrollment, error) {
	if m.enrollments == nil {
		m.enrollments = make(map[string]models.Enrollment)
	}
	e := models.Enrollment{
		ID:      "enroll-" + studentID,
		Student: models.UserRef{ID: studentID},
		Course:  models.CourseRef{ID: courseID},
	}
	m.enrollments[e.ID] = e
	return &e, nil
}

func (m *mockCourseRepo) UpdateEnrollmentProgress(ctx context.Context, enrollmentID string, lessonProgress int) (*models.Enrollment, error) {
	e, ok := m.enrollments[enrollmentID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	e.LessonProgress = lessonProgress
	m.enrollments[enrollmentID] = e
	if m.progress == nil {
		m.progress = make(map[string]int)
	}
	m.progress[enrollmentID] = lessonProgress
	return &e, nil
}

func (m *mockCourseRepo) DeleteEnrollment(ctx context.Context, enrollmentID string) error {
	delete(m.enrollments, enrollmentID)
	m.unenrolled = append(m.unenrolled, enrollmentID)
	return nil
}

func activeCourse(id, instructorID string, maxStudents int) models.Course {
	return models.Course{
		ID:          id,
		Title:       "Foundations of Faith",
		MaxStudents: maxStudents,
		IsActive:    true,
		Instructor:  models.UserRef{ID: instructorID},
	}
}

func TestCourseServiceCreateValidationListsFields(t *testing.T) {
	svc := NewCourseService(&mockCourseRepo{}, NewValidator(), zap.NewNop())
	identity := &models.Identity{UserID: "t1", Role: models.RoleTeacher}

	_, err := svc.Create(context.Background(), identity, CreateCourseRequest{
		Title:       "Bible Study",
		Description: "short",
		Syllabus:    "short",
		Category:    "Bible",
		Duration:    12,
		MaxStudents: 30,
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)

	joined := strings.Join(appErr.Details, "; ")
	assert.Contains(t, joined, "description")
	assert.Contains(t, joined, "syllabus")
	assert.NotContains(t, joined, "title")
}

func TestCourseServiceEnroll(t *testing.T) {
	repo := &mockCourseRepo{courses: map[string]models.Course{"c1": activeCourse("c1", "t1", 30)}}
	svc := NewCourseService(repo, NewValidator(), zap.NewNop())
	student := &models.Identity{UserID: "s1", Role: models.RoleStudent}

	enrollment, err := svc.Enroll(context.Background(), student, "c1")
	require.NoError(t, err)
	assert.Equal(t, "s1", enrollment.Student.ID)
}

func TestCourseServiceEnrollDuplicateConflicts(t *testing.T) {
	repo := &mockCourseRepo{courses: map[string]models.Course{"c1": activeCourse("c1", "t1", 30)}}
	svc := NewCourseService(repo, NewValidator(), zap.NewNop())
	student := &models.Identity{UserID: "s1", Role: models.RoleStudent}

	_, err := svc.Enroll(context.Background(), student, "c1")
	require.NoError(t, err)

	_, err = svc.Enroll(context.Background(), student, "c1")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.Status)
	assert.Equal(t, "already enrolled in this course", appErr.Message)
}

func TestCourseServiceEnrollFullCourse(t *testing.T) {
	repo := &mockCourseRepo{courses: map[string]models.Course{"c1": activeCourse("c1", "t1", 1)}}
	svc := NewCourseService(repo, NewValidator(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), &models.Identity{UserID: "s1", Role: models.RoleStudent}, "c1")
	require.NoError(t, err)

	_, err = svc.Enroll(context.Background(), &models.Identity{UserID: "s2", Role: models.RoleStudent}, "c1")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.Status)
	assert.Equal(t, "course is full", appErr.Message)
}

func TestCourseServiceEnrollInactiveCourse(t *testing.T) {
	course := activeCourse("c1", "t1", 30)
	course.IsActive = false
	repo := &mockCourseRepo{courses: map[string]models.Course{"c1": course}}
	svc := NewCourseService(repo, NewValidator(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), &models.Identity{UserID: "s1", Role: models.RoleStudent}, "c1")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
}

func TestCourseServiceUnenrollOtherStudent(t *testing.T) {
	repo := &mockCourseRepo{courses: map[string]models.Course{"c1": activeCourse("c1", "t1", 30)}}
	svc := NewCourseService(repo, NewValidator(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), &models.Identity{UserID: "s1", Role: models.RoleStudent}, "c1")
	require.NoError(t, err)

	err = svc.Unenroll(context.Background(), &models.Identity{UserID: "s2", Role: models.RoleStudent}, "c1", "s1")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Status)

	err = svc.Unenroll(context.Background(), &models.Identity{UserID: "admin", Role: models.RoleAdmin}, "c1", "s1")
	assert.NoError(t, err, "admins may unenroll any student")
}

func TestCourseServiceListEnrollmentsPinsStudents(t *testing.T) {
	repo := &mockCourseRepo{
		courses: map[string]models.Course{"c1": activeCourse("c1", "t1", 30)},
		enrollments: map[string]models.Enrollment{
			"e1": {ID: "e1", Student: models.UserRef{ID: "s1"}, Course: models.CourseRef{ID: "c1"}},
			"e2": {ID: "e2", Student: models.UserRef{ID: "s2"}, Course: models.CourseRef{ID: "c1"}},
		},
	}
	svc := NewCourseService(repo, NewValidator(), zap.NewNop())
	page := models.PageQuery{Page: 1, Limit: 10}

	list, _, err := svc.ListEnrollments(context.Background(), &models.Identity{UserID: "s1", Role: models.RoleStudent}, "c1", "", page)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "s1", list[0].Student.ID)

	list, _, err = svc.ListEnrollments(context.Background(), &models.Identity{UserID: "t1", Role: models.RoleTeacher}, "c1", "", page)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestCourseServiceUpdateProgress(t *testing.T) {
	repo := &mockCourseRepo{courses: map[string]models.Course{"c1": activeCourse("c1", "t1", 30)}}
	svc := NewCourseService(repo, NewValidator(), zap.NewNop())
	student := &models.Identity{UserID: "s1", Role: models.RoleStudent}

	_, err := svc.Enroll(context.Background(), student, "c1")
	require.NoError(t, err)

	enrollment, err := svc.UpdateProgress(context.Background(), student, "c1", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, enrollment.LessonProgress)

	_, err = svc.UpdateProgress(context.Background(), student, "c1", -1)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
}

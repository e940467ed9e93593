package repository

import (
	"context"
	"fmt"

	"github.com/agape-academy/academy-api/internal/hygraph"
	"github.com/agape-academy/academy-api/internal/models"
)

const courseFields = `
    id
    title
    description
    syllabus
    category
    duration
    maxStudents
    instructor { id uid displayName }
    isActive
    dateCreated: createdAt
    dateUpdated: updatedAt`

const enrollmentFields = `
    id
    student { id uid displayName }
    course { id title }
    lessonProgress
    dateCreated: createdAt`

const getCoursesQuery = `query GetCourses($where: CourseWhereInput, $first: Int, $skip: Int) {
  courses(where: $where, first: $first, skip: $skip, orderBy: createdAt_DESC) {` + courseFields + `
  }
  coursesConnection(where: $where) { aggregate { count } }
}`

const getCourseQuery = `query GetCourse($where: CourseWhereUniqueInput!) {
  course(where: $where) {` + courseFields + `
  }
}`

const createCourseMutation = `mutation CreateCourse($data: CourseCreateInput!) {
  createCourse(data: $data) {` + courseFields + `
  }
}`

const updateCourseMutation = `mutation UpdateCourse($where: CourseWhereUniqueInput!, $data: CourseUpdateInput!) {
  updateCourse(where: $where, data: $data) {` + courseFields + `
  }
}`

const deleteCourseMutation = `mutation DeleteCourse($where: CourseWhereUniqueInput!) {
  deleteCourse(where: $where) { id }
}`

const getEnrollmentsQuery = `query GetEnrollments($where: EnrollmentWhereInput, $first: Int, $skip: Int) {
  enrollments(where: $where, first: $first, skip: $skip, orderBy: createdAt_DESC) {` + enrollmentFields + `
  }
  enrollmentsConnection(where: $where) { aggregate { count } }
}`

const createEnrollmentMutation = `mutation CreateEnrollment($data: EnrollmentCreateInput!) {
  createEnrollment(data: $data) {` + enrollmentFields + `
  }
}`

const updateEnrollmentMutation = `mutation UpdateEnrollment($where: EnrollmentWhereUniqueInput!, $data: EnrollmentUpdateInput!) {
  updateEnrollment(where: $where, data: $data) {` + enrollmentFields + `
  }
}`

const deleteEnrollmentMutation = `mutation DeleteEnrollment($where: EnrollmentWhereUniqueInput!) {
  deleteEnrollment(where: $where) { id }
}`

// CourseRepository proxies course and enrollment persistence to Hygraph.
type CourseRepository struct {
	client *hygraph.Client
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(client *hygraph.Client) *CourseRepository {
	return &CourseRepository{client: client}
}

// List returns courses narrowed by the filter plus the aggregate count.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	where := map[string]interface{}{}
	if filter.Category != "" {
		where["category"] = filter.Category
	}
	if filter.InstructorID != "" {
		where["instructor"] = whereID(filter.InstructorID)
	}
	if filter.IsActive != nil {
		where["isActive"] = *filter.IsActive
	}
	if filter.Search != "" {
		where["title_contains"] = filter.Search
	}

	var out struct {
		Courses    []models.Course `json:"courses"`
		Connection aggregateCount  `json:"coursesConnection"`
	}
	vars := map[string]interface{}{"where": where, "first": filter.Limit, "skip": filter.Offset()}
	if err := r.client.Do(ctx, getCoursesQuery, vars, &out); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}
	return out.Courses, out.Connection.Aggregate.Count, nil
}

// FindByID returns a course by upstream id.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	var out struct {
		Course *models.Course `json:"course"`
	}
	if err := r.client.Do(ctx, getCourseQuery, map[string]interface{}{"where": whereID(id)}, &out); err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if out.Course == nil {
		return nil, ErrNotFound
	}
	return out.Course, nil
}

// Create persists a new course upstream.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) (*models.Course, error) {
	data := map[string]interface{}{
		"title":       course.Title,
		"description": course.Description,
		"syllabus":    course.Syllabus,
		"category":    course.Category,
		"duration":    course.Duration,
		"maxStudents": course.MaxStudents,
		"isActive":    course.IsActive,
		"instructor":  connectID(course.Instructor.ID),
	}
	var out struct {
		CreateCourse *models.Course `json:"createCourse"`
	}
	if err := r.client.Do(ctx, createCourseMutation, map[string]interface{}{"data": data}, &out); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return out.CreateCourse, nil
}

// Update applies a sparse change set to the course.
func (r *CourseRepository) Update(ctx context.Context, id string, changes map[string]interface{}) (*models.Course, error) {
	var out struct {
		UpdateCourse *models.Course `json:"updateCourse"`
	}
	vars := map[string]interface{}{"where": whereID(id), "data": changes}
	if err := r.client.Do(ctx, updateCourseMutation, vars, &out); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	if out.UpdateCourse == nil {
		return nil, ErrNotFound
	}
	return out.UpdateCourse, nil
}

// Delete removes the course upstream.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	var out struct {
		DeleteCourse *struct {
			ID string `json:"id"`
		} `json:"deleteCourse"`
	}
	if err := r.client.Do(ctx, deleteCourseMutation, map[string]interface{}{"where": whereID(id)}, &out); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if out.DeleteCourse == nil {
		return ErrNotFound
	}
	return nil
}

// ListEnrollments returns enrollments for a course and/or student.
func (r *CourseRepository) ListEnrollments(ctx context.Context, courseID, studentID string, page models.PageQuery) ([]models.Enrollment, int, error) {
	where := map[string]interface{}{}
	if courseID != "" {
		where["course"] = whereID(courseID)
	}
	if studentID != "" {
		where["student"] = whereID(studentID)
	}

	var out struct {
		Enrollments []models.Enrollment `json:"enrollments"`
		Connection  aggregateCount      `json:"enrollmentsConnection"`
	}
	vars := map[string]interface{}{"where": where, "first": page.Limit, "skip": page.Offset()}
	if err := r.client.Do(ctx, getEnrollmentsQuery, vars, &out); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}
	return out.Enrollments, out.Connection.Aggregate.Count, nil
}

// FindEnrollment returns the student's enrollment in a course, if any.
func (r *CourseRepository) FindEnrollment(ctx context.Context, courseID, studentID string) (*models.Enrollment, error) {
	enrollments, _, err := r.ListEnrollments(ctx, courseID, studentID, models.PageQuery{Page: 1, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(enrollments) == 0 {
		return nil, ErrNotFound
	}
	return &enrollments[0], nil
}

// CountEnrollments returns the enrollment count for a course.
func (r *CourseRepository) CountEnrollments(ctx context.Context, courseID string) (int, error) {
	_, total, err := r.ListEnrollments(ctx, courseID, "", models.PageQuery{Page: 1, Limit: 1})
	return total, err
}

// CreateEnrollment links a student to a course.
func (r *CourseRepository) CreateEnrollment(ctx context.Context, courseID, studentID string) (*models.Enrollment, error) {
	data := map[string]interface{}{
		"course":         connectID(courseID),
		"student":        connectID(studentID),
		"lessonProgress": 0,
	}
	var out struct {
		CreateEnrollment *models.Enrollment `json:"createEnrollment"`
	}
	if err := r.client.Do(ctx, createEnrollmentMutation, map[string]interface{}{"data": data}, &out); err != nil {
		return nil, fmt.Errorf("create enrollment: %w", err)
	}
	return out.CreateEnrollment, nil
}

// UpdateEnrollmentProgress moves the lesson-progress pointer.
func (r *CourseRepository) UpdateEnrollmentProgress(ctx context.Context, enrollmentID string, lessonProgress int) (*models.Enrollment, error) {
	var out struct {
		UpdateEnrollment *models.Enrollment `json:"updateEnrollment"`
	}
	vars := map[string]interface{}{
		"where": whereID(enrollmentID),
		"data":  map[string]interface{}{"lessonProgress": lessonProgress},
	}
	if err := r.client.Do(ctx, updateEnrollmentMutation, vars, &out); err != nil {
		return nil, fmt.Errorf("update enrollment: %w", err)
	}
	if out.UpdateEnrollment == nil {
		return nil, ErrNotFound
	}
	return out.UpdateEnrollment, nil
}

// DeleteEnrollment removes the link.
func (r *CourseRepository) DeleteEnrollment(ctx context.Context, enrollmentID string) error {
	var out struct {
		DeleteEnrollment *struct {
			ID string `json:"id"`
		} `json:"deleteEnrollment"`
	}
	if err := r.client.Do(ctx, deleteEnrollmentMutation, map[string]interface{}{"where": whereID(enrollmentID)}, &out); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	if out.DeleteEnrollment == nil {
		return ErrNotFound
	}
	return nil
}

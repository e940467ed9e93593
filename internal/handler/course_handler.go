package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/agape-academy/academy-api/internal/models"
	"github.com/agape-academy/academy-api/internal/service"
	appErrors "github.com/agape-academy/academy-api/pkg/errors"
	"github.com/agape-academy/academy-api/pkg/response"
)

// CourseHandler exposes course and enrollment endpoints.
type CourseHandler struct {
	courses *service.CourseService
	audit   *service.AuditService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses *service.CourseService, audit *service.AuditService) *CourseHandler {
	return &CourseHandler{courses: courses, audit: audit}
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Param category query string false "Filter by category"
// @Param instructorId query string false "Filter by instructor"
// @Param active query bool false "Filter by active state"
// @Param search query string false "Search in titles"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	var filter models.CourseFilter
	filter.Category = c.Query("category")
	filter.InstructorID = c.Query("instructorId")
	filter.Search = strings.TrimSpace(c.Query("search"))
	if active := c.Query("active"); active != "" {
		v := active == "true"
		filter.IsActive = &v
	}
	filter.PageQuery = pageQueryFromContext(c)

	courses, pagination, err := h.courses.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, "Courses retrieved successfully", courses, pagination)
}

// Get godoc
// @Summary Get course detail
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.courses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Course retrieved successfully", course)
}

// Create godoc
// @Summary Create course
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body service.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req service.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.courses.Create(c.Request.Context(), identityFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	recordAudit(c, h.audit, models.AuditActionCreate, "course", course.ID, nil, course)
	response.Created(c, "Course created successfully", course)
}

// Update godoc
// @Summary Update course
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body service.UpdateCourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	var req service.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.courses.Update(c.Request.Context(), identityFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	recordAudit(c, h.audit, models.AuditActionUpdate, "course", course.ID, nil, req)
	response.OK(c, "Course updated successfully", course)
}

// Delete godoc
// @Summary Delete course
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.courses.Delete(c.Request.Context(), identityFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	recordAudit(c, h.audit, models.AuditActionDelete, "course", c.Param("id"), nil, nil)
	response.OK(c, "Course deleted successfully", nil)
}

// Enroll godoc
// @Summary Enroll in course
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 201 {object} response.Envelope
// @Router /courses/{id}/enroll [post]
func (h *CourseHandler) Enroll(c *gin.Context) {
	enrollment, err := h.courses.Enroll(c.Request.Context(), identityFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	recordAudit(c, h.audit, models.AuditActionEnroll, "course", c.Param("id"), nil, enrollment)
	response.Created(c, "Enrolled successfully", enrollment)
}

// Unenroll godoc
// @Summary Unenroll from course
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Param studentId query string false "Student (admin only)"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/enroll [delete]
func (h *CourseHandler) Unenroll(c *gin.Context) {
	if err := h.courses.Unenroll(c.Request.Context(), identityFromContext(c), c.Param("id"), c.Query("studentId")); err != nil {
		response.Error(c, err)
		return
	}
	recordAudit(c, h.audit, models.AuditActionUnenroll, "course", c.Param("id"), nil, nil)
	response.OK(c, "Unenrolled successfully", nil)
}

// ListEnrollments godoc
// @Summary List course enrollments
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/enrollments [get]
func (h *CourseHandler) ListEnrollments(c *gin.Context) {
	enrollments, pagination, err := h.courses.ListEnrollments(
		c.Request.Context(), identityFromContext(c), c.Param("id"), c.Query("studentId"), pageQueryFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, "Enrollments retrieved successfully", enrollments, pagination)
}

type progressRequest struct {
	LessonProgress int `json:"lessonProgress"`
}

// UpdateProgress godoc
// @Summary Update lesson progress
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body progressRequest true "Progress payload"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/progress [put]
func (h *CourseHandler) UpdateProgress(c *gin.Context) {
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.courses.UpdateProgress(c.Request.Context(), identityFromContext(c), c.Param("id"), req.LessonProgress)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Progress updated successfully", enrollment)
}

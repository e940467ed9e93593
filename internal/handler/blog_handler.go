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

// BlogHandler exposes blog endpoints.
type BlogHandler struct {
	blogs *service.BlogService
	audit *service.AuditService
}

// NewBlogHandler constructs BlogHandler.
func NewBlogHandler(blogs *service.BlogService, audit *service.AuditService) *BlogHandler {
	return &BlogHandler{blogs: blogs, audit: audit}
}

// List godoc
// @Summary List blog posts
// @Tags Blog
// @Produce json
// @Param status query string false "Filter by status"
// @Param category query string false "Filter by category"
// @Param tag query string false "Filter by tag"
// @Param featured query bool false "Only featured posts"
// @Param search query string false "Search in titles"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /blog [get]
func (h *BlogHandler) List(c *gin.Context) {
	var filter models.BlogFilter
	if status := c.Query("status"); status != "" {
		s := models.BlogStatus(status)
		if !s.Valid() {
			response.Error(c, appErrors.Validation("status must be one of DRAFT, PUBLISHED, ARCHIVED"))
			return
		}
		filter.Status = &s
	}
	filter.Category = c.Query("category")
	filter.Tag = c.Query("tag")
	filter.AuthorID = c.Query("authorId")
	filter.Search = strings.TrimSpace(c.Query("search"))
	if featured := c.Query("featured"); featured != "" {
		v := featured == "true"
		filter.IsFeatured = &v
	}
	filter.PageQuery = pageQueryFromContext(c)

	posts, pagination, err := h.blogs.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, "Blog posts retrieved successfully", posts, pagination)
}

// Get godoc
// @Summary Get blog post
// @Tags Blog
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} response.Envelope
// @Router /blog/{id} [get]
func (h *BlogHandler) Get(c *gin.Context) {
	post, err := h.blogs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Blog post retrieved successfully", post)
}

// GetBySlug godoc
// @Summary Get blog post by slug
// @Tags Blog
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} response.Envelope
// @Router /blog/slug/{slug} [get]
func (h *BlogHandler) GetBySlug(c *gin.Context) {
	post, err := h.blogs.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Blog post retrieved successfully", post)
}

// Create godoc
// @Summary Create blog post
// @Tags Blog
// @Accept json
// @Produce json
// @Param payload body service.CreateBlogPostRequest true "Post payload"
// @Success 201 {object} response.Envelope
// @Router /blog [post]
func (h *BlogHandler) Create(c *gin.Context) {
	var req service.CreateBlogPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	post, err := h.blogs.Create(c.Request.Context(), identityFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	recordAudit(c, h.audit, models.AuditActionCreate, "blog", post.ID, nil, post)
	response.Created(c, "Blog post created successfully", post)
}

// Update godoc
// @Summary Update blog post
// @Tags Blog
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param payload body service.UpdateBlogPostRequest true "Post payload"
// @Success 200 {object} response.Envelope
// @Router /blog/{id} [put]
func (h *BlogHandler) Update(c *gin.Context) {
	var req service.UpdateBlogPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	post, err := h.blogs.Update(c.Request.Context(), identityFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	recordAudit(c, h.audit, models.AuditActionUpdate, "blog", post.ID, nil, req)
	response.OK(c, "Blog post updated successfully", post)
}

// Delete godoc
// @Summary Delete blog post
// @Tags Blog
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} response.Envelope
// @Router /blog/{id} [delete]
func (h *BlogHandler) Delete(c *gin.Context) {
	post, err := h.blogs.Delete(c.Request.Context(), identityFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	recordAudit(c, h.audit, models.AuditActionDelete, "blog", c.Param("id"), post, nil)
	response.OK(c, "Blog post deleted successfully", nil)
}

// Like godoc
// @Summary Like blog post
// @Tags Blog
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} response.Envelope
// @Router /blog/{id}/like [post]
func (h *BlogHandler) Like(c *gin.Context) {
	likes, err := h.blogs.Like(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Blog post liked", gin.H{"likes": likes})
}

// Unlike godoc
// @Summary Unlike blog post
// @Tags Blog
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} response.Envelope
// @Router /blog/{id}/unlike [post]
func (h *BlogHandler) Unlike(c *gin.Context) {
	likes, err := h.blogs.Unlike(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Blog post unliked", gin.H{"likes": likes})
}

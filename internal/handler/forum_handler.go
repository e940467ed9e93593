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

// ForumHandler exposes discussion forum endpoints.
type ForumHandler struct {
	forum *service.ForumService
	audit *service.AuditService
}

// NewForumHandler constructs ForumHandler.
func NewForumHandler(forum *service.ForumService, audit *service.AuditService) *ForumHandler {
	return &ForumHandler{forum: forum, audit: audit}
}

// ListThreads godoc
// @Summary List forum threads
// @Tags Forum
// @Produce json
// @Param category query string false "Filter by category"
// @Param pinned query bool false "Only pinned threads"
// @Param search query string false "Search in titles"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /forum/threads [get]
func (h *ForumHandler) ListThreads(c *gin.Context) {
	var filter models.ThreadFilter
	filter.Category = c.Query("category")
	filter.AuthorID = c.Query("authorId")
	filter.Search = strings.TrimSpace(c.Query("search"))
	if pinned := c.Query("pinned"); pinned != "" {
		v := pinned == "true"
		filter.IsPinned = &v
	}
	filter.PageQuery = pageQueryFromContext(c)

	threads, pagination, err := h.forum.ListThreads(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, "Threads retrieved successfully", threads, pagination)
}

// GetThread godoc
// @Summary Get thread detail
// @Tags Forum
// @Produce json
// @Param id path string true "Thread ID"
// @Success 200 {object} response.Envelope
// @Router /forum/threads/{id} [get]
func (h *ForumHandler) GetThread(c *gin.Context) {
	thread, err := h.forum.GetThread(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Thread retrieved successfully", thread)
}

// CreateThread godoc
// @Summary Create thread
// @Tags Forum
// @Accept json
// @Produce json
// @Param payload body service.CreateThreadRequest true "Thread payload"
// @Success 201 {object} response.Envelope
// @Router /forum/threads [post]
func (h *ForumHandler) CreateThread(c *gin.Context) {
	var req service.CreateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	thread, err := h.forum.CreateThread(c.Request.Context(), identityFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	recordAudit(c, h.audit, models.AuditActionCreate, "thread", thread.ID, nil, thread)
	response.Created(c, "Thread created successfully", thread)
}

// UpdateThread godoc
// @Summary Update thread
// @Tags Forum
// @Accept json
// @Produce json
// @Param id path string true "Thread ID"
// @Param payload body service.UpdateThreadRequest true "Thread payload"
// @Success 200 {object} response.Envelope
// @Router /forum/threads/{id} [put]
func (h *ForumHandler) UpdateThread(c *gin.Context) {
	var req service.UpdateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	thread, err := h.forum.UpdateThread(c.Request.Context(), identityFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	recordAudit(c, h.audit, models.AuditActionUpdate, "thread", thread.ID, nil, req)
	response.OK(c, "Thread updated successfully", thread)
}

// DeleteThread godoc
// @Summary Delete thread
// @Tags Forum
// @Produce json
// @Param id path string true "Thread ID"
// @Success 200 {object} response.Envelope
// @Router /forum/threads/{id} [delete]
func (h *ForumHandler) DeleteThread(c *gin.Context) {
	if err := h.forum.DeleteThread(c.Request.Context(), identityFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	recordAudit(c, h.audit, models.AuditActionDelete, "thread", c.Param("id"), nil, nil)
	response.OK(c, "Thread deleted successfully", nil)
}

type threadFlagRequest struct {
	Value bool `json:"value"`
}

// PinThread godoc
// @Summary Pin or unpin thread
// @Tags Forum
// @Accept json
// @Produce json
// @Param id path string true "Thread ID"
// @Param payload body threadFlagRequest true "Pin flag"
// @Success 200 {object} response.Envelope
// @Router /forum/threads/{id}/pin [put]
func (h *ForumHandler) PinThread(c *gin.Context) {
	var req threadFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	thread, err := h.forum.SetThreadPinned(c.Request.Context(), identityFromContext(c), c.Param("id"), req.Value)
	if err != nil {
		response.Error(c, err)
		return
	}
	recordAudit(c, h.audit, models.AuditActionUpdate, "thread", thread.ID, nil, gin.H{"isPinned": req.Value})
	response.OK(c, "Thread updated successfully", thread)
}

// LockThread godoc
// @Summary Lock or unlock thread
// @Tags Forum
// @Accept json
// @Produce json
// @Param id path string true "Thread ID"
// @Param payload body threadFlagRequest true "Lock flag"
// @Success 200 {object} response.Envelope
// @Router /forum/threads/{id}/lock [put]
func (h *ForumHandler) LockThread(c *gin.Context) {
	var req threadFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	thread, err := h.forum.SetThreadLocked(c.Request.Context(), identityFromContext(c), c.Param("id"), req.Value)
	if err != nil {
		response.Error(c, err)
		return
	}
	recordAudit(c, h.audit, models.AuditActionUpdate, "thread", thread.ID, nil, gin.H{"isLocked": req.Value})
	response.OK(c, "Thread updated successfully", thread)
}

// LikeThread godoc
// @Summary Like thread
// @Tags Forum
// @Produce json
// @Param id path string true "Thread ID"
// @Success 200 {object} response.Envelope
// @Router /forum/threads/{id}/like [post]
func (h *ForumHandler) LikeThread(c *gin.Context) {
	likes, err := h.forum.LikeThread(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Thread liked", gin.H{"likes": likes})
}

// UnlikeThread godoc
// @Summary Unlike thread
// @Tags Forum
// @Produce json
// @Param id path string true "Thread ID"
// @Success 200 {object} response.Envelope
// @Router /forum/threads/{id}/unlike [post]
func (h *ForumHandler) UnlikeThread(c *gin.Context) {
	likes, err := h.forum.UnlikeThread(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Thread unliked", gin.H{"likes": likes})
}

// ListPosts godoc
// @Summary List posts in thread
// @Tags Forum
// @Produce json
// @Param id path string true "Thread ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /forum/threads/{id}/posts [get]
func (h *ForumHandler) ListPosts(c *gin.Context) {
	filter := models.PostFilter{ThreadID: c.Param("id"), PageQuery: pageQueryFromContext(c)}
	posts, pagination, err := h.forum.ListPosts(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, "Posts retrieved successfully", posts, pagination)
}

// CreatePost godoc
// @Summary Reply to thread
// @Tags Forum
// @Accept json
// @Produce json
// @Param id path string true "Thread ID"
// @Param payload body service.CreatePostRequest true "Post payload"
// @Success 201 {object} response.Envelope
// @Router /forum/threads/{id}/posts [post]
func (h *ForumHandler) CreatePost(c *gin.Context) {
	var req service.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	post, err := h.forum.CreatePost(c.Request.Context(), identityFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	recordAudit(c, h.audit, models.AuditActionCreate, "post", post.ID, nil, post)
	response.Created(c, "Post created successfully", post)
}

type updatePostRequest struct {
	Body string `json:"body"`
}

// UpdatePost godoc
// @Summary Edit post
// @Tags Forum
// @Accept json
// @Produce json
// @Param postId path string true "Post ID"
// @Param payload body updatePostRequest true "Post payload"
// @Success 200 {object} response.Envelope
// @Router /forum/posts/{postId} [put]
func (h *ForumHandler) UpdatePost(c *gin.Context) {
	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	post, err := h.forum.UpdatePost(c.Request.Context(), identityFromContext(c), c.Param("postId"), req.Body)
	if err != nil {
		response.Error(c, err)
		return
	}
	recordAudit(c, h.audit, models.AuditActionUpdate, "post", post.ID, nil, req)
	response.OK(c, "Post updated successfully", post)
}

// DeletePost godoc
// @Summary Delete post
// @Tags Forum
// @Produce json
// @Param postId path string true "Post ID"
// @Success 200 {object} response.Envelope
// @Router /forum/posts/{postId} [delete]
func (h *ForumHandler) DeletePost(c *gin.Context) {
	if err := h.forum.DeletePost(c.Request.Context(), identityFromContext(c), c.Param("postId")); err != nil {
		response.Error(c, err)
		return
	}
	recordAudit(c, h.audit, models.AuditActionDelete, "post", c.Param("postId"), nil, nil)
	response.OK(c, "Post deleted successfully", nil)
}

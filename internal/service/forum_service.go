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

type forumRepository interface {
	ListThreads(ctx context.Context, filter models.ThreadFilter) ([]models.ForumThread, int, error)
	FindThread(ctx context.Context, id string) (*models.ForumThread, error)
	CreateThread(ctx context.Context, thread *models.ForumThread) (*models.ForumThread, error)
	UpdateThread(ctx context.Context, id string, changes map[string]interface{}) (*models.ForumThread, error)
	DeleteThread(ctx context.Context, id string) error
	ListPosts(ctx context.Context, filter models.PostFilter) ([]models.ForumPost, int, error)
	FindPost(ctx context.Context, id string) (*models.ForumPost, error)
	CreatePost(ctx context.Context, post *models.ForumPost) (*models.ForumPost, error)
	UpdatePost(ctx context.Context, id string, changes map[string]interface{}) (*models.ForumPost, error)
	DeletePost(ctx context.Context, id string) error
}

// ForumService handles discussion thread and post workflows. Thread like
// and view counters live in Redis.
type ForumService struct {
	repo      forumRepository
	counters  *CounterService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewForumService constructs the service.
func NewForumService(repo forumRepository, counters *CounterService, validate *validator.Validate, logger *zap.Logger) *ForumService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ForumService{repo: repo, counters: counters, validator: validate, logger: logger}
}

// CreateThreadRequest describes the thread create payload.
type CreateThreadRequest struct {
	Title    string `json:"title" validate:"required,min=3"`
	Body     string `json:"body" validate:"required,min=10"`
	Category string `json:"category" validate:"required"`
}

// UpdateThreadRequest describes the sparse thread update payload.
type UpdateThreadRequest struct {
	Title    *string `json:"title" validate:"omitempty,min=3"`
	Body     *string `json:"body" validate:"omitempty,min=10"`
	Category *string `json:"category"`
}

// CreatePostRequest describes the post create payload.
type CreatePostRequest struct {
	Body         string `json:"body" validate:"required"`
	ParentPostID string `json:"parentPostId"`
}

// ListThreads returns threads with live counters overlaid.
func (s *ForumService) ListThreads(ctx context.Context, filter models.ThreadFilter) ([]models.ForumThread, *models.Pagination, error) {
	threads, total, err := s.repo.ListThreads(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to list threads")
	}
	for i := range threads {
		s.overlayCounters(ctx, &threads[i])
	}
	return threads, models.NewPagination(filter.Page, filter.Limit, total), nil
}

// GetThread returns a thread by id and counts the view.
func (s *ForumService) GetThread(ctx context.Context, id string) (*models.ForumThread, error) {
	thread, err := s.repo.FindThread(ctx, id)
	if err != nil {
		return nil, threadError(err)
	}
	s.counters.Seed(ctx, CounterResourceThread, thread.ID, thread.Likes, thread.Views)
	if views, err := s.counters.View(ctx, CounterResourceThread, thread.ID); err == nil {
		thread.Views = views
	}
	if likes, _, err := s.counters.Current(ctx, CounterResourceThread, thread.ID); err == nil {
		thread.Likes = likes
	}
	return thread, nil
}

// CreateThread registers a new thread owned by the caller.
func (s *ForumService) CreateThread(ctx context.Context, identity *models.Identity, req CreateThreadRequest) (*models.ForumThread, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	thread := &models.ForumThread{
		Title:    req.Title,
		Body:     req.Body,
		Category: req.Category,
		Author:   models.UserRef{ID: identity.UserID},
	}
	created, err := s.repo.CreateThread(ctx, thread)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to create thread")
	}
	s.counters.Seed(ctx, CounterResourceThread, created.ID, 0, 0)
	return created, nil
}

// UpdateThread edits the thread. Only the author or an admin may edit.
func (s *ForumService) UpdateThread(ctx context.Context, identity *models.Identity, id string, req UpdateThreadRequest) (*models.ForumThread, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	thread, err := s.repo.FindThread(ctx, id)
	if err != nil {
		return nil, threadError(err)
	}
	if !authz.CanMutate(identity.Role, identity.UserID, thread.Author.ID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}

	changes := map[string]interface{}{}
	if req.Title != nil {
		changes["title"] = *req.Title
	}
	if req.Body != nil {
		changes["body"] = *req.Body
	}
	if req.Category != nil {
		changes["category"] = *req.Category
	}
	if len(changes) == 0 {
		return thread, nil
	}
	updated, err := s.repo.UpdateThread(ctx, id, changes)
	if err != nil {
		return nil, threadError(err)
	}
	s.overlayCounters(ctx, updated)
	return updated, nil
}

// SetThreadPinned pins or unpins a thread. Admin only.
func (s *ForumService) SetThreadPinned(ctx context.Context, identity *models.Identity, id string, pinned bool) (*models.ForumThread, error) {
	if !identity.Role.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	updated, err := s.repo.UpdateThread(ctx, id, map[string]interface{}{"isPinned": pinned})
	if err != nil {
		return nil, threadError(err)
	}
	return updated, nil
}

// SetThreadLocked locks or unlocks a thread. Admin only.
func (s *ForumService) SetThreadLocked(ctx context.Context, identity *models.Identity, id string, locked bool) (*models.ForumThread, error) {
	if !identity.Role.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	updated, err := s.repo.UpdateThread(ctx, id, map[string]interface{}{"isLocked": locked})
	if err != nil {
		return nil, threadError(err)
	}
	return updated, nil
}

// DeleteThread removes a thread. Only the author or an admin may delete.
func (s *ForumService) DeleteThread(ctx context.Context, identity *models.Identity, id string) error {
	thread, err := s.repo.FindThread(ctx, id)
	if err != nil {
		return threadError(err)
	}
	if !authz.CanMutate(identity.Role, identity.UserID, thread.Author.ID) {
		return appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if err := s.repo.DeleteThread(ctx, id); err != nil {
		return threadError(err)
	}
	return nil
}

// LikeThread bumps the thread like counter.
func (s *ForumService) LikeThread(ctx context.Context, id string) (int, error) {
	thread, err := s.repo.FindThread(ctx, id)
	if err != nil {
		return 0, threadError(err)
	}
	s.counters.Seed(ctx, CounterResourceThread, thread.ID, thread.Likes, thread.Views)
	likes, err := s.counters.Like(ctx, CounterResourceThread, id)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record like")
	}
	return likes, nil
}

// UnlikeThread lowers the thread like counter, never below zero.
func (s *ForumService) UnlikeThread(ctx context.Context, id string) (int, error) {
	thread, err := s.repo.FindThread(ctx, id)
	if err != nil {
		return 0, threadError(err)
	}
	s.counters.Seed(ctx, CounterResourceThread, thread.ID, thread.Likes, thread.Views)
	likes, err := s.counters.Unlike(ctx, CounterResourceThread, id)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record unlike")
	}
	return likes, nil
}

// ListPosts returns posts in a thread.
func (s *ForumService) ListPosts(ctx context.Context, filter models.PostFilter) ([]models.ForumPost, *models.Pagination, error) {
	posts, total, err := s.repo.ListPosts(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to list posts")
	}
	return posts, models.NewPagination(filter.Page, filter.Limit, total), nil
}

// CreatePost replies to a thread. Locked threads reject new posts, replies
// included, unless the caller is an admin. A reply may target a top-level
// post only; deeper nesting is rejected.
func (s *ForumService) CreatePost(ctx context.Context, identity *models.Identity, threadID string, req CreatePostRequest) (*models.ForumPost, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	thread, err := s.repo.FindThread(ctx, threadID)
	if err != nil {
		return nil, threadError(err)
	}
	if thread.IsLocked && !identity.Role.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "thread is locked")
	}

	post := &models.ForumPost{
		Body:   req.Body,
		Author: models.UserRef{ID: identity.UserID},
		Thread: models.ThreadRef{ID: thread.ID},
	}
	if req.ParentPostID != "" {
		parent, err := s.repo.FindPost(ctx, req.ParentPostID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "parent post not found")
			}
			return nil, postError(err)
		}
		if parent.Thread.ID != thread.ID {
			return nil, appErrors.Validation("parent post belongs to a different thread")
		}
		if parent.ParentPost != nil {
			return nil, appErrors.Validation("replies can only nest one level deep")
		}
		post.ParentPost = &models.ThreadRef{ID: parent.ID}
	}

	created, err := s.repo.CreatePost(ctx, post)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to create post")
	}
	return created, nil
}

// UpdatePost edits the post body. Only the author or an admin may edit.
func (s *ForumService) UpdatePost(ctx context.Context, identity *models.Identity, id, body string) (*models.ForumPost, error) {
	if body == "" {
		return nil, appErrors.Validation("body is required")
	}
	post, err := s.repo.FindPost(ctx, id)
	if err != nil {
		return nil, postError(err)
	}
	if !authz.CanMutate(identity.Role, identity.UserID, post.Author.ID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	updated, err := s.repo.UpdatePost(ctx, id, map[string]interface{}{"body": body})
	if err != nil {
		return nil, postError(err)
	}
	return updated, nil
}

// DeletePost removes a post. Only the author or an admin may delete.
func (s *ForumService) DeletePost(ctx context.Context, identity *models.Identity, id string) error {
	post, err := s.repo.FindPost(ctx, id)
	if err != nil {
		return postError(err)
	}
	if !authz.CanMutate(identity.Role, identity.UserID, post.Author.ID) {
		return appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if err := s.repo.DeletePost(ctx, id); err != nil {
		return postError(err)
	}
	return nil
}

func (s *ForumService) overlayCounters(ctx context.Context, thread *models.ForumThread) {
	likes, views, err := s.counters.Current(ctx, CounterResourceThread, thread.ID)
	if err != nil {
		return
	}
	if likes > 0 || views > 0 {
		thread.Likes = likes
		thread.Views = views
	}
}

func threadError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return appErrors.Clone(appErrors.ErrNotFound, "thread not found")
	}
	return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "forum backend request failed")
}

func postError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return appErrors.Clone(appErrors.ErrNotFound, "post not found")
	}
	return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "forum backend request failed")
}

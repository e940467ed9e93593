package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/agape-academy/academy-api/internal/authz"
	"github.com/agape-academy/academy-api/internal/models"
	"github.com/agape-academy/academy-api/internal/repository"
	appErrors "github.com/agape-academy/academy-api/pkg/errors"
)

type blogRepository interface {
	List(ctx context.Context, filter models.BlogFilter) ([]models.BlogPost, int, error)
	FindByID(ctx context.Context, id string) (*models.BlogPost, error)
	FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	Create(ctx context.Context, post *models.BlogPost) (*models.BlogPost, error)
	Update(ctx context.Context, id string, changes map[string]interface{}) (*models.BlogPost, error)
	Delete(ctx context.Context, id string) error
}

// BlogService handles blog post workflows. Like and view counters live in
// Redis; responses overlay the live values over the upstream snapshot.
type BlogService struct {
	repo      blogRepository
	counters  *CounterService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBlogService constructs the service.
func NewBlogService(repo blogRepository, counters *CounterService, validate *validator.Validate, logger *zap.Logger) *BlogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BlogService{repo: repo, counters: counters, validator: validate, logger: logger}
}

// CreateBlogPostRequest describes the create payload.
type CreateBlogPostRequest struct {
	Title         string   `json:"title" validate:"required,min=3"`
	Content       string   `json:"content" validate:"required,min=10"`
	Excerpt       string   `json:"excerpt"`
	Slug          string   `json:"slug"`
	Status        string   `json:"status"`
	Tags          []string `json:"tags"`
	Category      string   `json:"category" validate:"required"`
	IsFeatured    bool     `json:"isFeatured"`
	AllowComments *bool    `json:"allowComments"`
}

// UpdateBlogPostRequest describes the sparse update payload.
type UpdateBlogPostRequest struct {
	Title         *string   `json:"title" validate:"omitempty,min=3"`
	Content       *string   `json:"content" validate:"omitempty,min=10"`
	Excerpt       *string   `json:"excerpt"`
	Slug          *string   `json:"slug"`
	Status        *string   `json:"status"`
	Tags          *[]string `json:"tags"`
	Category      *string   `json:"category"`
	IsFeatured    *bool     `json:"isFeatured"`
	AllowComments *bool     `json:"allowComments"`
}

// Slugify derives a URL slug from a title: lowercase, non-alphanumerics
// become separators, runs collapse into a single hyphen.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// List returns posts with live counters overlaid.
func (s *BlogService) List(ctx context.Context, filter models.BlogFilter) ([]models.BlogPost, *models.Pagination, error) {
	posts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to list blog posts")
	}
	for i := range posts {
		s.overlayCounters(ctx, &posts[i])
	}
	return posts, models.NewPagination(filter.Page, filter.Limit, total), nil
}

// Get returns a post by id and counts the view.
func (s *BlogService) Get(ctx context.Context, id string) (*models.BlogPost, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, blogError(err)
	}
	s.recordView(ctx, post)
	return post, nil
}

// GetBySlug returns a post by slug and counts the view.
func (s *BlogService) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	post, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, blogError(err)
	}
	s.recordView(ctx, post)
	return post, nil
}

// Create registers a new post owned by the caller.
func (s *BlogService) Create(ctx context.Context, identity *models.Identity, req CreateBlogPostRequest) (*models.BlogPost, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	status := models.BlogStatus(req.Status)
	if req.Status == "" {
		status = models.BlogStatusDraft
	}
	if !status.Valid() {
		return nil, appErrors.Validation("status must be one of DRAFT, PUBLISHED, ARCHIVED")
	}
	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Title)
	}
	allowComments := true
	if req.AllowComments != nil {
		allowComments = *req.AllowComments
	}
	post := &models.BlogPost{
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		Slug:          slug,
		Status:        status,
		Tags:          req.Tags,
		Category:      req.Category,
		IsFeatured:    req.IsFeatured,
		AllowComments: allowComments,
		Author:        models.UserRef{ID: identity.UserID},
	}
	if status == models.BlogStatusPublished {
		now := time.Now().UTC()
		post.PublishedAt = &now
	}
	created, err := s.repo.Create(ctx, post)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to create blog post")
	}
	s.counters.Seed(ctx, CounterResourceBlog, created.ID, 0, 0)
	return created, nil
}

// Update applies a sparse change set. Only the author or an admin may edit.
func (s *BlogService) Update(ctx context.Context, identity *models.Identity, id string, req UpdateBlogPostRequest) (*models.BlogPost, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, blogError(err)
	}
	if !authz.CanMutate(identity.Role, identity.UserID, post.Author.ID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}

	changes := map[string]interface{}{}
	if req.Title != nil {
		changes["title"] = *req.Title
		if req.Slug == nil {
			changes["slug"] = Slugify(*req.Title)
		}
	}
	if req.Content != nil {
		changes["content"] = *req.Content
	}
	if req.Excerpt != nil {
		changes["excerpt"] = *req.Excerpt
	}
	if req.Slug != nil {
		changes["slug"] = *req.Slug
	}
	if req.Status != nil {
		status := models.BlogStatus(*req.Status)
		if !status.Valid() {
			return nil, appErrors.Validation("status must be one of DRAFT, PUBLISHED, ARCHIVED")
		}
		changes["status"] = status
		if status == models.BlogStatusPublished && post.PublishedAt == nil {
			changes["publishedAt"] = time.Now().UTC()
		}
	}
	if req.Tags != nil {
		changes["tags"] = *req.Tags
	}
	if req.Category != nil {
		changes["category"] = *req.Category
	}
	if req.IsFeatured != nil {
		changes["isFeatured"] = *req.IsFeatured
	}
	if req.AllowComments != nil {
		changes["allowComments"] = *req.AllowComments
	}
	if len(changes) == 0 {
		return post, nil
	}

	updated, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, blogError(err)
	}
	s.overlayCounters(ctx, updated)
	return updated, nil
}

// Delete removes a post. Only the author or an admin may delete.
func (s *BlogService) Delete(ctx context.Context, identity *models.Identity, id string) (*models.BlogPost, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, blogError(err)
	}
	if !authz.CanMutate(identity.Role, identity.UserID, post.Author.ID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, blogError(err)
	}
	return post, nil
}

// Like bumps the like counter atomically and returns the new total.
func (s *BlogService) Like(ctx context.Context, id string) (int, error) {
	if err := s.ensureCounters(ctx, id); err != nil {
		return 0, err
	}
	likes, err := s.counters.Like(ctx, CounterResourceBlog, id)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record like")
	}
	return likes, nil
}

// Unlike lowers the like counter, never below zero.
func (s *BlogService) Unlike(ctx context.Context, id string) (int, error) {
	if err := s.ensureCounters(ctx, id); err != nil {
		return 0, err
	}
	likes, err := s.counters.Unlike(ctx, CounterResourceBlog, id)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record unlike")
	}
	return likes, nil
}

func (s *BlogService) ensureCounters(ctx context.Context, id string) error {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return blogError(err)
	}
	s.counters.Seed(ctx, CounterResourceBlog, post.ID, post.Likes, post.Views)
	return nil
}

func (s *BlogService) recordView(ctx context.Context, post *models.BlogPost) {
	s.counters.Seed(ctx, CounterResourceBlog, post.ID, post.Likes, post.Views)
	views, err := s.counters.View(ctx, CounterResourceBlog, post.ID)
	if err != nil {
		s.logger.Warn("record blog view", zap.String("id", post.ID), zap.Error(err))
		return
	}
	post.Views = views
	if likes, _, err := s.counters.Current(ctx, CounterResourceBlog, post.ID); err == nil {
		post.Likes = likes
	}
}

func (s *BlogService) overlayCounters(ctx context.Context, post *models.BlogPost) {
	likes, views, err := s.counters.Current(ctx, CounterResourceBlog, post.ID)
	if err != nil {
		return
	}
	if likes > 0 || views > 0 {
		post.Likes = likes
		post.Views = views
	}
}

func blogError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return appErrors.Clone(appErrors.ErrNotFound, "blog post not found")
	}
	return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "blog backend request failed")
}

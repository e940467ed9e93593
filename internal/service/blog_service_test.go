package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agape-academy/academy-api/internal/models"
	"github.com/agape-academy/academy-api/internal/repository"
	appErrors "github.com/agape-academy/academy-api/pkg/errors"
)

type mockBlogRepo struct {
	posts   map[string]models.BlogPost
	created *models.BlogPost
	changes map[string]interface{}
	deleted []string
}

func (m *mockBlogRepo) List(ctx context.Context, filter models.BlogFilter) ([]models.BlogPost, int, error) {
	var list []models.BlogPost
	for _, p := range m.posts {
		list = append(list, p)
	}
	return list, len(list), nil
}

func (m *mockBlogRepo) FindByID(ctx context.Context, id string) (*models.BlogPost, error) {
	if p, ok := m.posts[id]; ok {
		return &p, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockBlogRepo) FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	for _, p := range m.posts {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockBlogRepo) Create(ctx context.Context, post *models.BlogPost) (*models.BlogPost, error) {
	if m.posts == nil {
		m.posts = make(map[string]models.BlogPost)
	}
	post.ID = "new-post"
	m.posts[post.ID] = *post
	m.created = post
	return post, nil
}

func (m *mockBlogRepo) Update(ctx context.Context, id string, changes map[string]interface{}) (*models.BlogPost, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	m.changes = changes
	if title, ok := changes["title"].(string); ok {
		p.Title = title
	}
	if status, ok := changes["status"].(models.BlogStatus); ok {
		p.Status = status
	}
	m.posts[id] = p
	return &p, nil
}

func (m *mockBlogRepo) Delete(ctx context.Context, id string) error {
	delete(m.posts, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func newBlogService(repo *mockBlogRepo) *BlogService {
	counters := NewCounterService(newMemCounterStore(), &CounterSinkMux{}, zap.NewNop(), nil)
	return NewBlogService(repo, counters, NewValidator(), zap.NewNop())
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello, World!  Test":   "hello-world-test",
		"Already-Slugged":       "already-slugged",
		"  Leading & trailing ": "leading-trailing",
		"UPPER case 123":        "upper-case-123",
	}
	for input, want := range cases {
		assert.Equal(t, want, Slugify(input), "input %q", input)
	}
}

func TestBlogServiceCreateDefaults(t *testing.T) {
	repo := &mockBlogRepo{}
	svc := newBlogService(repo)
	identity := &models.Identity{UserID: "u1", Role: models.RoleTeacher}

	post, err := svc.Create(context.Background(), identity, CreateBlogPostRequest{
		Title:    "Walking in Faith",
		Content:  "A reflection on daily discipleship.",
		Category: "theology",
	})
	require.NoError(t, err)
	assert.Equal(t, models.BlogStatusDraft, post.Status)
	assert.Equal(t, "walking-in-faith", post.Slug)
	assert.True(t, post.AllowComments)
	assert.Nil(t, post.PublishedAt)
	assert.Equal(t, "u1", post.Author.ID)
}

func TestBlogServiceCreatePublishedSetsTimestamp(t *testing.T) {
	repo := &mockBlogRepo{}
	svc := newBlogService(repo)
	identity := &models.Identity{UserID: "u1", Role: models.RoleTeacher}

	post, err := svc.Create(context.Background(), identity, CreateBlogPostRequest{
		Title:    "Walking in Faith",
		Content:  "A reflection on daily discipleship.",
		Category: "theology",
		Status:   "PUBLISHED",
	})
	require.NoError(t, err)
	assert.NotNil(t, post.PublishedAt)
}

func TestBlogServiceCreateValidation(t *testing.T) {
	svc := newBlogService(&mockBlogRepo{})
	identity := &models.Identity{UserID: "u1", Role: models.RoleTeacher}

	_, err := svc.Create(context.Background(), identity, CreateBlogPostRequest{Title: "ab", Content: "short"})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
	assert.NotEmpty(t, appErr.Details)
}

func TestBlogServiceUpdateOwnership(t *testing.T) {
	repo := &mockBlogRepo{posts: map[string]models.BlogPost{
		"p1": {ID: "p1", Title: "Original", Author: models.UserRef{ID: "owner"}},
	}}
	svc := newBlogService(repo)
	title := "Renamed Post"

	_, err := svc.Update(context.Background(), &models.Identity{UserID: "intruder", Role: models.RoleStudent}, "p1", UpdateBlogPostRequest{Title: &title})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Status)

	updated, err := svc.Update(context.Background(), &models.Identity{UserID: "owner", Role: models.RoleStudent}, "p1", UpdateBlogPostRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Post", updated.Title)
	assert.Equal(t, "renamed-post", repo.changes["slug"], "title change re-derives the slug")

	_, err = svc.Update(context.Background(), &models.Identity{UserID: "someone-else", Role: models.RoleAdmin}, "p1", UpdateBlogPostRequest{Title: &title})
	assert.NoError(t, err, "admins may edit any post")
}

func TestBlogServiceLikeUnlike(t *testing.T) {
	repo := &mockBlogRepo{posts: map[string]models.BlogPost{
		"p1": {ID: "p1", Author: models.UserRef{ID: "owner"}},
	}}
	svc := newBlogService(repo)
	ctx := context.Background()

	likes, err := svc.Like(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, likes)

	likes, err = svc.Unlike(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, likes)

	likes, err = svc.Unlike(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, likes, "unlike never drops below zero")
}

func TestBlogServiceLikeUnknownPost(t *testing.T) {
	svc := newBlogService(&mockBlogRepo{})

	_, err := svc.Like(context.Background(), "missing")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Status)
}

func TestBlogServiceGetCountsView(t *testing.T) {
	repo := &mockBlogRepo{posts: map[string]models.BlogPost{
		"p1": {ID: "p1", Views: 7, Author: models.UserRef{ID: "owner"}},
	}}
	svc := newBlogService(repo)

	post, err := svc.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 8, post.Views, "view counter seeds from upstream then increments")
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agape-academy/academy-api/internal/middleware"
	"github.com/agape-academy/academy-api/internal/models"
	"github.com/agape-academy/academy-api/internal/repository"
	"github.com/agape-academy/academy-api/internal/service"
	"github.com/agape-academy/academy-api/pkg/response"
)

type blogRepoStub struct {
	posts []models.BlogPost
}

func (s *blogRepoStub) List(ctx context.Context, filter models.BlogFilter) ([]models.BlogPost, int, error) {
	return s.posts, len(s.posts), nil
}

func (s *blogRepoStub) FindByID(ctx context.Context, id string) (*models.BlogPost, error) {
	for _, p := range s.posts {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *blogRepoStub) FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	for _, p := range s.posts {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *blogRepoStub) Create(ctx context.Context, post *models.BlogPost) (*models.BlogPost, error) {
	post.ID = "new-post"
	s.posts = append(s.posts, *post)
	return post, nil
}

func (s *blogRepoStub) Update(ctx context.Context, id string, changes map[string]interface{}) (*models.BlogPost, error) {
	return s.FindByID(ctx, id)
}

func (s *blogRepoStub) Delete(ctx context.Context, id string) error {
	return nil
}

type counterStoreStub struct {
	values map[string]int
}

func (s *counterStoreStub) key(resource, id, name string) string {
	return resource + ":" + id + ":" + name
}

func (s *counterStoreStub) Increment(ctx context.Context, resource, id, name string) (int, error) {
	if s.values == nil {
		s.values = make(map[string]int)
	}
	s.values[s.key(resource, id, name)]++
	return s.values[s.key(resource, id, name)], nil
}

func (s *counterStoreStub) Decrement(ctx context.Context, resource, id, name string) (int, error) {
	k := s.key(resource, id, name)
	if s.values[k] > 0 {
		s.values[k]--
	}
	return s.values[k], nil
}

func (s *counterStoreStub) Get(ctx context.Context, resource, id, name string) (int, error) {
	return s.values[s.key(resource, id, name)], nil
}

func (s *counterStoreStub) Seed(ctx context.Context, resource, id, name string, value int) error {
	if s.values == nil {
		s.values = make(map[string]int)
	}
	if _, ok := s.values[s.key(resource, id, name)]; !ok {
		s.values[s.key(resource, id, name)] = value
	}
	return nil
}

func (s *counterStoreStub) Dirty(ctx context.Context, resource, id string) error {
	return nil
}

func (s *counterStoreStub) TakeDirty(ctx context.Context, resource string) ([]string, error) {
	return nil, nil
}

func newBlogHandler(repo *blogRepoStub) *BlogHandler {
	counters := service.NewCounterService(&counterStoreStub{}, &service.CounterSinkMux{}, zap.NewNop(), nil)
	blogs := service.NewBlogService(repo, counters, service.NewValidator(), zap.NewNop())
	return NewBlogHandler(blogs, nil)
}

func TestBlogHandlerListEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newBlogHandler(&blogRepoStub{posts: []models.BlogPost{{ID: "p1", Title: "First"}}})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/blog", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "Blog posts retrieved successfully", envelope.Message)
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 1, envelope.Pagination.Total)
}

func TestBlogHandlerListInvalidStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newBlogHandler(&blogRepoStub{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/blog?status=SHOUTING", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
}

func TestBlogHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newBlogHandler(&blogRepoStub{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := `{"title":"Walking in Faith","content":"A reflection on daily discipleship.","category":"theology"}`
	req, _ := http.NewRequest(http.MethodPost, "/blog", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.Identity{UserID: "t1", Role: models.RoleTeacher})

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "Blog post created successfully", envelope.Message)
}

func TestBlogHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newBlogHandler(&blogRepoStub{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/blog/missing", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agape-academy/academy-api/internal/hygraph"
	"github.com/agape-academy/academy-api/internal/models"
	"github.com/agape-academy/academy-api/pkg/config"
)

type capturedRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

func newRepoTestClient(t *testing.T, handler http.HandlerFunc) *hygraph.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return hygraph.NewClient(config.HygraphConfig{Endpoint: server.URL, Token: "test-token", Timeout: 2 * time.Second}, nil)
}

func TestBlogRepositoryListBuildsWhereClause(t *testing.T) {
	var captured capturedRequest
	client := newRepoTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{
			"blogPosts":[{"id":"p1","title":"First","slug":"first","status":"PUBLISHED","category":"theology"}],
			"blogPostsConnection":{"aggregate":{"count":42}}
		}}`))
	})
	repo := NewBlogRepository(client)

	status := models.BlogStatusPublished
	posts, total, err := repo.List(context.Background(), models.BlogFilter{
		Status:    &status,
		Category:  "theology",
		PageQuery: models.PageQuery{Page: 2, Limit: 10},
	})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "p1", posts[0].ID)
	assert.Equal(t, 42, total, "total comes from the aggregate count, not the page length")

	where, ok := captured.Variables["where"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "PUBLISHED", where["status"])
	assert.Equal(t, "theology", where["category"])
	assert.NotContains(t, where, "title_contains")
	assert.Equal(t, float64(10), captured.Variables["first"])
	assert.Equal(t, float64(10), captured.Variables["skip"])
}

func TestBlogRepositoryFindByIDNotFound(t *testing.T) {
	client := newRepoTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"blogPost":null}}`))
	})
	repo := NewBlogRepository(client)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBlogRepositoryFindBySlug(t *testing.T) {
	var captured capturedRequest
	client := newRepoTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"data":{"blogPost":{"id":"p1","slug":"walking-in-faith"}}}`))
	})
	repo := NewBlogRepository(client)

	post, err := repo.FindBySlug(context.Background(), "walking-in-faith")
	require.NoError(t, err)
	assert.Equal(t, "p1", post.ID)

	where, ok := captured.Variables["where"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "walking-in-faith", where["slug"])
}

func TestBlogRepositorySetCounters(t *testing.T) {
	var captured capturedRequest
	client := newRepoTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"data":{"updateBlogPost":{"id":"p1","likes":3,"views":17}}}`))
	})
	repo := NewBlogRepository(client)

	require.NoError(t, repo.SetCounters(context.Background(), "p1", 3, 17))

	data, ok := captured.Variables["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), data["likes"])
	assert.Equal(t, float64(17), data["views"])
}

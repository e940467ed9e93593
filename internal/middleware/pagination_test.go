package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agape-academy/academy-api/internal/models"
)

func runPagination(t *testing.T, query string) (*httptest.ResponseRecorder, models.PageQuery) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, "/items"+query, nil)
	require.NoError(t, err)
	c.Request = req

	Pagination()(c)
	return w, PageQueryFromContext(c)
}

func TestPaginationDefaults(t *testing.T) {
	w, pq := runPagination(t, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, pq.Page)
	assert.Equal(t, 10, pq.Limit)
}

func TestPaginationNormalizesValidValues(t *testing.T) {
	w, pq := runPagination(t, "?page=3&limit=25")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, pq.Page)
	assert.Equal(t, 25, pq.Limit)
}

func TestPaginationRejectsBadValues(t *testing.T) {
	cases := []string{
		"?page=0",
		"?page=-2",
		"?page=abc",
		"?limit=0",
		"?limit=101",
		"?limit=abc",
		"?page=0&limit=500",
	}
	for _, query := range cases {
		w, _ := runPagination(t, query)
		assert.Equal(t, http.StatusBadRequest, w.Code, "query %q", query)
	}
}

func TestPaginationLimitUpperBoundInclusive(t *testing.T) {
	w, pq := runPagination(t, "?limit=100")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 100, pq.Limit)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/agape-academy/academy-api/internal/models"
	appErrors "github.com/agape-academy/academy-api/pkg/errors"
)

type stubAuthenticator struct {
	identity *models.Identity
}

func (s *stubAuthenticator) Authenticate(c *gin.Context, token string) (*models.Identity, error) {
	if s.identity == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return s.identity, nil
}

func runAuth(t *testing.T, mw gin.HandlerFunc, header string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	c.Request = req

	mw(c)
	return w, c
}

func TestAuthMissingHeader(t *testing.T) {
	w, _ := runAuth(t, Auth(&stubAuthenticator{}), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMalformedHeader(t *testing.T) {
	w, _ := runAuth(t, Auth(&stubAuthenticator{}), "Token abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthInvalidToken(t *testing.T) {
	w, _ := runAuth(t, Auth(&stubAuthenticator{}), "Bearer bad-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthAttachesIdentity(t *testing.T) {
	identity := &models.Identity{UserID: "u1", Role: models.RoleStudent}
	w, c := runAuth(t, Auth(&stubAuthenticator{identity: identity}), "Bearer good-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, identity, IdentityFromContext(c))
}

func TestOptionalAuthAllowsAnonymous(t *testing.T) {
	w, c := runAuth(t, OptionalAuth(&stubAuthenticator{}), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, IdentityFromContext(c))
}

func TestOptionalAuthAttachesWhenValid(t *testing.T) {
	identity := &models.Identity{UserID: "u1", Role: models.RoleTeacher}
	_, c := runAuth(t, OptionalAuth(&stubAuthenticator{identity: identity}), "Bearer good-token")
	assert.Equal(t, identity, IdentityFromContext(c))
}

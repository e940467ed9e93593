package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/agape-academy/academy-api/internal/models"
	appErrors "github.com/agape-academy/academy-api/pkg/errors"
)

type memIdentityCache struct {
	identities map[string]*models.Identity
	hits       int
}

func (m *memIdentityCache) Get(ctx context.Context, uid string) (*models.Identity, error) {
	if identity, ok := m.identities[uid]; ok {
		m.hits++
		return identity, nil
	}
	return nil, appErrors.ErrCacheMiss
}

func (m *memIdentityCache) Set(ctx context.Context, identity *models.Identity) {
	if m.identities == nil {
		m.identities = make(map[string]*models.Identity)
	}
	m.identities[identity.UID] = identity
}

func newAuthService(t *testing.T, repo authUserRepository, cache identityCache) *AuthService {
	t.Helper()
	svc, err := NewAuthService(repo, cache, zap.NewNop(), AuthConfig{
		SecretKey:      "test-secret",
		DevTokenExpiry: time.Hour,
	})
	require.NoError(t, err)
	return svc
}

func signHS256(t *testing.T, secret, sub string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"iat": time.Now().Unix(),
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func testGinContext(t *testing.T) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req, err := http.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, err)
	c.Request = req
	return c
}

func TestAuthServiceAuthenticate(t *testing.T) {
	repo := &mockUserRepo{users: map[string]models.User{
		"u1": {ID: "u1", UID: "uid-1", Email: "maria@example.org", Role: models.RoleStudent, IsActive: true},
	}}
	cache := &memIdentityCache{}
	svc := newAuthService(t, repo, cache)
	token := signHS256(t, "test-secret", "uid-1", time.Now().Add(time.Hour))

	identity, err := svc.Authenticate(testGinContext(t), token)
	require.NoError(t, err)
	assert.Equal(t, "u1", identity.UserID)
	assert.Equal(t, "uid-1", identity.UID)

	// Second call resolves from the cache.
	_, err = svc.Authenticate(testGinContext(t), token)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
}

func TestAuthServiceAuthenticateExpiredToken(t *testing.T) {
	svc := newAuthService(t, &mockUserRepo{}, nil)
	token := signHS256(t, "test-secret", "uid-1", time.Now().Add(-time.Hour))

	_, err := svc.Authenticate(testGinContext(t), token)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.Status)
}

func TestAuthServiceAuthenticateWrongSecret(t *testing.T) {
	svc := newAuthService(t, &mockUserRepo{}, nil)
	token := signHS256(t, "other-secret", "uid-1", time.Now().Add(time.Hour))

	_, err := svc.Authenticate(testGinContext(t), token)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.Status)
}

func TestAuthServiceAuthenticateUnknownSubject(t *testing.T) {
	svc := newAuthService(t, &mockUserRepo{}, nil)
	token := signHS256(t, "test-secret", "uid-ghost", time.Now().Add(time.Hour))

	_, err := svc.Authenticate(testGinContext(t), token)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.Status)
	assert.Equal(t, "no account for this token", appErr.Message)
}

func TestAuthServiceAuthenticateDeactivatedAccount(t *testing.T) {
	repo := &mockUserRepo{users: map[string]models.User{
		"u1": {ID: "u1", UID: "uid-1", IsActive: false},
	}}
	svc := newAuthService(t, repo, nil)
	token := signHS256(t, "test-secret", "uid-1", time.Now().Add(time.Hour))

	_, err := svc.Authenticate(testGinContext(t), token)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Status)
}

func TestAuthServiceDevLogin(t *testing.T) {
	repo := &mockUserRepo{users: map[string]models.User{
		"u1": {ID: "u1", UID: "uid-1", Email: "dev@agape.dev", Role: models.RoleAdmin, IsActive: true},
	}}
	svc := newAuthService(t, repo, nil)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	svc.RegisterDevCredential("dev@agape.dev", "uid-1", string(hash))

	token, identity, err := svc.DevLogin(context.Background(), "dev@agape.dev", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "u1", identity.UserID)

	// The issued token round-trips through Authenticate.
	resolved, err := svc.Authenticate(testGinContext(t), token)
	require.NoError(t, err)
	assert.Equal(t, "u1", resolved.UserID)
}

func TestAuthServiceDevLoginWrongPassword(t *testing.T) {
	svc := newAuthService(t, &mockUserRepo{}, nil)
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	svc.RegisterDevCredential("dev@agape.dev", "uid-1", string(hash))

	_, _, err = svc.DevLogin(context.Background(), "dev@agape.dev", "wrong")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.Status)

	_, _, err = svc.DevLogin(context.Background(), "nobody@agape.dev", "hunter2")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.Status)
}

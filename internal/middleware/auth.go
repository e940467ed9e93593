package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/agape-academy/academy-api/internal/models"
	appErrors "github.com/agape-academy/academy-api/pkg/errors"
	"github.com/agape-academy/academy-api/pkg/response"
)

// ContextUserKey is the gin context key storing the resolved identity.
const ContextUserKey = "currentUser"

// Authenticator verifies a bearer token and resolves the caller identity.
type Authenticator interface {
	Authenticate(c *gin.Context, token string) (*models.Identity, error)
}

// Auth protects routes by requiring a valid bearer token. On success the
// resolved Identity is attached to the context; controllers never see raw
// provider claims.
func Auth(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		identity, err := authenticator.Authenticate(c, token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, identity)
		c.Next()
	}
}

// OptionalAuth attaches an identity when a valid token is present but does
// not block anonymous requests.
func OptionalAuth(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		identity, err := authenticator.Authenticate(c, token)
		if err != nil {
			c.Next()
			return
		}

		c.Set(ContextUserKey, identity)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// IdentityFromContext returns the attached identity, or nil.
func IdentityFromContext(c *gin.Context) *models.Identity {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	identity, ok := value.(*models.Identity)
	if !ok {
		return nil
	}
	return identity
}

package service

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/agape-academy/academy-api/internal/models"
	"github.com/agape-academy/academy-api/internal/repository"
	appErrors "github.com/agape-academy/academy-api/pkg/errors"
)

type authUserRepository interface {
	FindByUID(ctx context.Context, uid string) (*models.User, error)
}

type identityCache interface {
	Get(ctx context.Context, uid string) (*models.Identity, error)
	Set(ctx context.Context, identity *models.Identity)
}

// AuthConfig defines token verification settings.
type AuthConfig struct {
	// PEMPublicKey verifies Clerk session tokens (RS256).
	PEMPublicKey string
	// SecretKey verifies locally issued dev tokens (HS256).
	SecretKey string
	// DevTokenExpiry bounds dev login tokens.
	DevTokenExpiry time.Duration
}

// AuthService verifies bearer tokens and resolves the caller to a single
// Identity keyed by the backend user id. Resolution is cached so a request
// does not cost an upstream lookup.
type AuthService struct {
	repo   authUserRepository
	cache  identityCache
	logger *zap.Logger
	config AuthConfig

	publicKey *rsa.PublicKey

	mu             sync.RWMutex
	devCredentials map[string]devCredential
}

type devCredential struct {
	uid          string
	passwordHash string
}

// NewAuthService constructs the service. An invalid PEM key is an error at
// startup, not at request time.
func NewAuthService(repo authUserRepository, cache identityCache, logger *zap.Logger, config AuthConfig) (*AuthService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AuthService{
		repo:           repo,
		cache:          cache,
		logger:         logger,
		config:         config,
		devCredentials: make(map[string]devCredential),
	}
	if config.PEMPublicKey != "" {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(config.PEMPublicKey))
		if err != nil {
			return nil, fmt.Errorf("parse clerk public key: %w", err)
		}
		svc.publicKey = key
	}
	return svc, nil
}

// Authenticate verifies the token and resolves the backend identity.
func (s *AuthService) Authenticate(c *gin.Context, token string) (*models.Identity, error) {
	uid, err := s.verify(token)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return s.resolve(c.Request.Context(), uid)
}

// verify checks the token signature. Clerk session tokens are RS256; dev
// tokens fall back to HS256 with the local secret.
func (s *AuthService) verify(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		switch t.Method.(type) {
		case *jwt.SigningMethodRSA:
			if s.publicKey == nil {
				return nil, errors.New("no RSA public key configured")
			}
			return s.publicKey, nil
		case *jwt.SigningMethodHMAC:
			if s.config.SecretKey == "" {
				return nil, errors.New("no HMAC secret configured")
			}
			return []byte(s.config.SecretKey), nil
		default:
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
	})
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("token invalid: %w", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("unexpected claims type")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

// resolve maps the token subject to a backend user, preferring the cache.
func (s *AuthService) resolve(ctx context.Context, uid string) (*models.Identity, error) {
	if s.cache != nil {
		if identity, err := s.cache.Get(ctx, uid); err == nil {
			return identity, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("identity cache read", zap.Error(err))
		}
	}

	user, err := s.repo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no account for this token")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to resolve identity")
	}
	if !user.IsActive {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "account is deactivated")
	}

	identity := &models.Identity{
		UserID:      user.ID,
		UID:         user.UID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	}
	if s.cache != nil {
		s.cache.Set(ctx, identity)
	}
	return identity, nil
}

// RegisterDevCredential stores a dev login password hash. Used by the seed
// flow outside production only.
func (s *AuthService) RegisterDevCredential(email, uid, passwordHash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devCredentials[email] = devCredential{uid: uid, passwordHash: passwordHash}
}

// DevLogin checks a seeded credential and issues a local HS256 token whose
// subject is the seeded uid. Not wired in production.
func (s *AuthService) DevLogin(ctx context.Context, email, password string) (string, *models.Identity, error) {
	if s.config.SecretKey == "" {
		return "", nil, appErrors.Clone(appErrors.ErrUnauthorized, "dev login is not configured")
	}
	s.mu.RLock()
	cred, ok := s.devCredentials[email]
	s.mu.RUnlock()
	if !ok {
		return "", nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.passwordHash), []byte(password)); err != nil {
		return "", nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid email or password")
	}

	identity, err := s.resolve(ctx, cred.uid)
	if err != nil {
		return "", nil, err
	}

	expiry := s.config.DevTokenExpiry
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": cred.uid,
		"iat": now.Unix(),
		"exp": now.Add(expiry).Unix(),
	})
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}
	return signed, identity, nil
}

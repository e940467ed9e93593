package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/agape-academy/academy-api/internal/models"
	appErrors "github.com/agape-academy/academy-api/pkg/errors"
)

// IdentityCache keeps resolved token identities in Redis so each request
// does not cost an upstream user lookup. Safe to construct with a nil
// client, in which case every read misses.
type IdentityCache struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewIdentityCache constructs the cache.
func NewIdentityCache(client *redis.Client, logger *zap.Logger, ttl time.Duration) *IdentityCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &IdentityCache{client: client, logger: logger, ttl: ttl}
}

func identityKey(uid string) string {
	return "identity:" + uid
}

// Get retrieves a cached identity by token subject.
func (c *IdentityCache) Get(ctx context.Context, uid string) (*models.Identity, error) {
	if c.client == nil {
		return nil, appErrors.ErrCacheMiss
	}
	raw, err := c.client.Get(ctx, identityKey(uid)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get identity %s: %w", uid, err)
	}
	var identity models.Identity
	if err := json.Unmarshal(raw, &identity); err != nil {
		return nil, fmt.Errorf("unmarshal identity %s: %w", uid, err)
	}
	return &identity, nil
}

// Set stores the identity under its token subject.
func (c *IdentityCache) Set(ctx context.Context, identity *models.Identity) {
	if c.client == nil || identity == nil {
		return
	}
	payload, err := json.Marshal(identity)
	if err != nil {
		c.logger.Warn("marshal identity for cache", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, identityKey(identity.UID), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("cache identity", zap.String("uid", identity.UID), zap.Error(err))
	}
}

// Invalidate removes the cached identity, for role or status changes.
func (c *IdentityCache) Invalidate(ctx context.Context, uid string) {
	if c.client == nil || uid == "" {
		return
	}
	if err := c.client.Del(ctx, identityKey(uid)).Err(); err != nil {
		c.logger.Warn("invalidate identity", zap.String("uid", uid), zap.Error(err))
	}
}

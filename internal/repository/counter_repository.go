package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// decrFloorScript decrements a counter but never below zero, atomically.
var decrFloorScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current <= 0 then
  redis.call('SET', KEYS[1], '0')
  return 0
end
return redis.call('DECR', KEYS[1])
`)

// CounterRepository holds like and view counters in Redis so concurrent
// increments do not lose updates. The flush job periodically writes the
// values back upstream.
type CounterRepository struct {
	client *redis.Client
}

// NewCounterRepository constructs the repository.
func NewCounterRepository(client *redis.Client) *CounterRepository {
	return &CounterRepository{client: client}
}

func counterKey(resource, id, name string) string {
	return fmt.Sprintf("counter:%s:%s:%s", resource, id, name)
}

// Increment atomically bumps the counter and returns the new value.
func (r *CounterRepository) Increment(ctx context.Context, resource, id, name string) (int, error) {
	value, err := r.client.Incr(ctx, counterKey(resource, id, name)).Result()
	if err != nil {
		return 0, fmt.Errorf("incr counter %s/%s/%s: %w", resource, id, name, err)
	}
	return int(value), nil
}

// Decrement atomically lowers the counter, clamped at zero.
func (r *CounterRepository) Decrement(ctx context.Context, resource, id, name string) (int, error) {
	value, err := decrFloorScript.Run(ctx, r.client, []string{counterKey(resource, id, name)}).Int64()
	if err != nil {
		return 0, fmt.Errorf("decr counter %s/%s/%s: %w", resource, id, name, err)
	}
	return int(value), nil
}

// Get reads the current counter value. A missing key reads as zero.
func (r *CounterRepository) Get(ctx context.Context, resource, id, name string) (int, error) {
	raw, err := r.client.Get(ctx, counterKey(resource, id, name)).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("get counter %s/%s/%s: %w", resource, id, name, err)
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse counter %s/%s/%s: %w", resource, id, name, err)
	}
	return value, nil
}

// Seed stores the upstream value so later increments build on it. Only
// written when the key does not exist yet.
func (r *CounterRepository) Seed(ctx context.Context, resource, id, name string, value int) error {
	if err := r.client.SetNX(ctx, counterKey(resource, id, name), value, 0).Err(); err != nil {
		return fmt.Errorf("seed counter %s/%s/%s: %w", resource, id, name, err)
	}
	return nil
}

// Dirty marks the resource id as needing an upstream flush.
func (r *CounterRepository) Dirty(ctx context.Context, resource, id string) error {
	if err := r.client.SAdd(ctx, "counter:dirty:"+resource, id).Err(); err != nil {
		return fmt.Errorf("mark counter dirty %s/%s: %w", resource, id, err)
	}
	return nil
}

// TakeDirty pops every id awaiting a flush for the resource.
func (r *CounterRepository) TakeDirty(ctx context.Context, resource string) ([]string, error) {
	key := "counter:dirty:" + resource
	ids, err := r.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("read dirty counters %s: %w", resource, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return nil, fmt.Errorf("clear dirty counters %s: %w", resource, err)
	}
	return ids, nil
}

package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "schedulepay:subscription:"

// StatusCache memoizes check-subscription answers in Redis. A nil client
// turns every call into a miss.
type StatusCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStatusCache(client *redis.Client, ttl time.Duration) *StatusCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &StatusCache{redis: client, ttl: ttl}
}

func (c *StatusCache) key(professionalID string) string {
	return cacheKeyPrefix + professionalID
}

// Get returns (nil, nil) on a miss.
func (c *StatusCache) Get(ctx context.Context, professionalID string) (*Status, error) {
	if c == nil || c.redis == nil {
		return nil, nil
	}
	data, err := c.redis.Get(ctx, c.key(professionalID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("billing: cache get: %w", err)
	}
	var st Status
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("billing: cache decode: %w", err)
	}
	return &st, nil
}

func (c *StatusCache) Set(ctx context.Context, professionalID string, st Status) error {
	if c == nil || c.redis == nil {
		return nil
	}
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("billing: cache encode: %w", err)
	}
	if err := c.redis.Set(ctx, c.key(professionalID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("billing: cache set: %w", err)
	}
	return nil
}

func (c *StatusCache) Invalidate(ctx context.Context, professionalID string) error {
	if c == nil || c.redis == nil {
		return nil
	}
	if err := c.redis.Del(ctx, c.key(professionalID)).Err(); err != nil {
		return fmt.Errorf("billing: cache invalidate: %w", err)
	}
	return nil
}

// Package redis implements the read cache in front of the mapping store.
// The cache is derivative and disposable: flushing it costs latency, never
// correctness.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"shorty/internal/app/links"
	"shorty/internal/domain"
)

const keyPrefix = "link:"

type Cache struct {
	rdb *redis.Client
}

func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

var _ links.Cache = (*Cache)(nil)

// cacheEntry is the wire form of a cached link. Only the fields the resolve
// path needs are kept; stats always go to the store.
type cacheEntry struct {
	Code      string     `json:"code"`
	TargetURL string     `json:"target_url"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (c *Cache) Get(ctx context.Context, code string) (domain.Link, error) {
	b, err := c.rdb.Get(ctx, key(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Link{}, links.ErrCacheMiss
		}

		return domain.Link{}, fmt.Errorf("redis: get: %w", err)
	}

	var entry cacheEntry
	if err := json.Unmarshal(b, &entry); err != nil {
		// a corrupt entry behaves like a miss so the store takes over
		return domain.Link{}, fmt.Errorf("redis: decode %q: %w: %w", code, err, links.ErrCacheMiss)
	}

	return domain.Link{
		Code:      entry.Code,
		TargetURL: entry.TargetURL,
		ExpiresAt: entry.ExpiresAt,
	}, nil
}

func (c *Cache) Put(ctx context.Context, link domain.Link, ttl time.Duration) error {
	// without a positive TTL the key would live forever, which the cache
	// contract forbids
	if ttl <= 0 {
		return nil
	}

	b, err := json.Marshal(cacheEntry{
		Code:      link.Code,
		TargetURL: link.TargetURL,
		ExpiresAt: link.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("redis: encode %q: %w", link.Code, err)
	}

	if err := c.rdb.Set(ctx, key(link.Code), b, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set: %w", err)
	}

	return nil
}

func (c *Cache) Invalidate(ctx context.Context, code string) error {
	if err := c.rdb.Del(ctx, key(code)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis: del: %w", err)
	}

	return nil
}

func key(code string) string {
	return keyPrefix + code
}

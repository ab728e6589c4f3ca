package cache

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/redis/go-redis/v9"
)

const pageKeyPrefix = "page:"

// PageCache keeps rendered views keyed by the path that produced them.
// Revalidate discards a view so the next request recomputes it.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	return &PageCache{client: client, ttl: ttl}
}

// Get returns the cached body for p. A miss is reported as ok=false with a nil error.
func (c *PageCache) Get(ctx context.Context, p string) ([]byte, bool, error) {
	body, err := c.client.Get(ctx, Key(p)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	return body, true, nil
}

func (c *PageCache) Set(ctx context.Context, p string, body []byte) error {
	if err := c.client.Set(ctx, Key(p), body, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}

	return nil
}

func (c *PageCache) Revalidate(ctx context.Context, p string) error {
	if err := c.client.Del(ctx, Key(p)).Err(); err != nil {
		return fmt.Errorf("cache revalidate %s: %w", p, err)
	}

	return nil
}

// Key normalizes p so "dashboard/invoices" and "/dashboard/invoices/" share an entry.
func Key(p string) string {
	return pageKeyPrefix + path.Clean("/"+p)
}

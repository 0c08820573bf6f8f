package cache

import (
	"context"
	"time"
)

// ttlCache caps the lifetime of every entry written through it.
type ttlCache struct {
	Cache
	max time.Duration
}

// WithMaxTTL wraps c so no entry outlives max. A max of zero returns c.
func WithMaxTTL(c Cache, max time.Duration) Cache {
	if max <= 0 {
		return c
	}
	return &ttlCache{Cache: c, max: max}
}

// Set stores data with the smaller of ttl and the cap.
func (c *ttlCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl <= 0 || ttl > c.max {
		ttl = c.max
	}
	return c.Cache.Set(ctx, key, data, ttl)
}

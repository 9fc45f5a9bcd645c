package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/faqgen/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SummaryCache = (*SummaryCache)(nil)

const summaryPrefix = "faqgen:summary:"

// SummaryCache implements driven.SummaryCache using Redis.
// Entries expire through Redis TTL.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
	owned  bool
}

// NewSummaryCache creates a cache on an existing client.
// A zero ttl keeps entries until evicted.
func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{client: client, ttl: ttl}
}

// OpenSummaryCache connects to addr and closes the client on Close.
func OpenSummaryCache(ctx context.Context, addr string, ttl time.Duration) (*SummaryCache, error) {
	client, err := Connect(ctx, addr)
	if err != nil {
		return nil, err
	}
	return &SummaryCache{client: client, ttl: ttl, owned: true}, nil
}

// Get returns a cached summary.
func (c *SummaryCache) Get(ctx context.Context, key string) (string, bool, error) {
	summary, err := c.client.Get(ctx, summaryPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get summary: %w", err)
	}
	return summary, true, nil
}

// Put stores a summary.
func (c *SummaryCache) Put(ctx context.Context, key, summary string) error {
	if err := c.client.Set(ctx, summaryPrefix+key, summary, c.ttl).Err(); err != nil {
		return fmt.Errorf("put summary: %w", err)
	}
	return nil
}

// Close releases the client if this cache opened it.
func (c *SummaryCache) Close() error {
	if c.owned {
		return c.client.Close()
	}
	return nil
}

package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/faqgen/internal/core/ports/driven"
)

// Ensure SummaryCache implements the interface.
var _ driven.SummaryCache = (*SummaryCache)(nil)

// SummaryCache is an in-memory implementation of driven.SummaryCache.
// It lives for one process, which is enough for watch mode.
type SummaryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewSummaryCache creates an empty cache.
func NewSummaryCache() *SummaryCache {
	return &SummaryCache{entries: make(map[string]string)}
}

// Get returns a cached summary.
func (c *SummaryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.entries[key]
	return s, ok, nil
}

// Put stores a summary.
func (c *SummaryCache) Put(_ context.Context, key, summary string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = summary
	return nil
}

// Len returns the number of entries.
func (c *SummaryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close is a no-op.
func (c *SummaryCache) Close() error {
	return nil
}

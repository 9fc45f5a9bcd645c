package driven

import "context"

// SummaryCache stores chunk summaries by content key.
// Cache failures are never fatal to a run; callers log and continue.
type SummaryCache interface {
	// Get returns the cached summary and true on a hit.
	Get(ctx context.Context, key string) (string, bool, error)

	// Put stores a summary.
	Put(ctx context.Context, key, summary string) error

	// Close releases resources.
	Close() error
}

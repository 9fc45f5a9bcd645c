package driving

import (
	"context"

	"github.com/custodia-labs/faqgen/internal/core/domain"
)

// FAQGenerator runs the documentation pipeline.
type FAQGenerator interface {
	// Run aggregates the source tree, summarises it, synthesises a candidate
	// document and persists it if it changed.
	Run(ctx context.Context) (*domain.RunReport, error)

	// Document returns the current document snapshot.
	Document(ctx context.Context) (domain.Snapshot, error)
}

// TokenCounter reports token statistics without calling the API.
type TokenCounter interface {
	// CountTokens aggregates the source tree and returns its token and chunk counts.
	CountTokens(ctx context.Context) (*TokenStats, error)
}

// TokenStats is returned by TokenCounter.
type TokenStats struct {
	// Encoding is the vocabulary name.
	Encoding string

	// Tokens is the token count of the aggregated source.
	Tokens int

	// Chunks is the number of chunks a run would summarise.
	Chunks int

	// MaxTokens is the chunk limit used.
	MaxTokens int
}

package driven

import "github.com/custodia-labs/faqgen/internal/core/domain"

// Chunker splits text into token-bounded chunks.
type Chunker interface {
	// Split returns ceil(tokens/MaxTokens) chunks in source order.
	// Empty text yields no chunks.
	Split(text string) []domain.Chunk

	// MaxTokens returns the per-chunk token limit.
	MaxTokens() int
}

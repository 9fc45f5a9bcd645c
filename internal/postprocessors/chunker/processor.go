// Package chunker provides a token-bounded text chunking processor.
package chunker

import (
	"fmt"
	"iter"

	"github.com/custodia-labs/faqgen/internal/core/domain"
	"github.com/custodia-labs/faqgen/internal/core/ports/driven"
)

// DefaultMaxTokens is the default number of tokens per chunk.
const DefaultMaxTokens = domain.DefaultMaxTokens

// Ensure Processor implements the Chunker interface.
var _ driven.Chunker = (*Processor)(nil)

// Processor splits text into chunks of at most maxTokens tokens.
// Chunks are disjoint, contiguous and in source order. A chunk may split a
// file or even a line; callers that need semantic boundaries chunk per unit.
type Processor struct {
	tokenizer driven.Tokenizer
	maxTokens int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMaxTokens sets the chunk size in tokens.
func WithMaxTokens(n int) Option {
	return func(p *Processor) {
		p.maxTokens = n
	}
}

// New creates a new chunker processor with the given options.
// A non-positive chunk size is a caller error.
func New(tokenizer driven.Tokenizer, opts ...Option) (*Processor, error) {
	p := &Processor{
		tokenizer: tokenizer,
		maxTokens: DefaultMaxTokens,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.maxTokens <= 0 {
		return nil, fmt.Errorf("%w (got %d)", domain.ErrInvalidChunkSize, p.maxTokens)
	}
	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// MaxTokens returns the per-chunk token limit.
func (p *Processor) MaxTokens() int {
	return p.maxTokens
}

// Split collects every chunk of text.
func (p *Processor) Split(text string) []domain.Chunk {
	tokens := p.tokenizer.Encode(text)
	chunks := make([]domain.Chunk, 0, Count(len(tokens), p.maxTokens))
	for c := range p.chunks(tokens) {
		chunks = append(chunks, c)
	}
	return chunks
}

// Chunks returns a lazy sequence of chunks. Text is encoded once up front;
// each chunk is decoded only when the consumer asks for it.
func (p *Processor) Chunks(text string) iter.Seq[domain.Chunk] {
	return p.chunks(p.tokenizer.Encode(text))
}

func (p *Processor) chunks(tokens []int) iter.Seq[domain.Chunk] {
	return func(yield func(domain.Chunk) bool) {
		for i, start := 0, 0; start < len(tokens); i, start = i+1, start+p.maxTokens {
			end := min(start+p.maxTokens, len(tokens))
			slice := tokens[start:end]
			c := domain.Chunk{
				Index:  i,
				Text:   p.tokenizer.Decode(slice),
				Tokens: len(slice),
			}
			if !yield(c) {
				return
			}
		}
	}
}

// Chunk splits text with the given tokenizer and limit.
func Chunk(tokenizer driven.Tokenizer, text string, maxTokens int) (iter.Seq[domain.Chunk], error) {
	p, err := New(tokenizer, WithMaxTokens(maxTokens))
	if err != nil {
		return nil, err
	}
	return p.Chunks(text), nil
}

// Count returns ceil(tokens/maxTokens), the number of chunks a text of the
// given token length produces.
func Count(tokens, maxTokens int) int {
	if tokens <= 0 || maxTokens <= 0 {
		return 0
	}
	return (tokens + maxTokens - 1) / maxTokens
}

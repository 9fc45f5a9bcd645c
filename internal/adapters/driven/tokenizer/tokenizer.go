// Package tokenizer provides a BPE tokenizer backed by tiktoken.
//
// Vocabularies are loaded from data embedded in the binary, so no network
// access is needed at runtime.
package tokenizer

import (
	"fmt"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"

	"github.com/custodia-labs/faqgen/internal/core/domain"
	"github.com/custodia-labs/faqgen/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.Tokenizer = (*Tokenizer)(nil)

var loaderOnce sync.Once

// Tokenizer encodes text with one fixed tiktoken vocabulary.
type Tokenizer struct {
	enc      *tiktoken.Tiktoken
	encoding string
}

// New returns a tokenizer for the named encoding, e.g. "cl100k_base".
// An unknown encoding is a configuration error.
func New(encoding string) (*Tokenizer, error) {
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: chunking.encoding: %w", domain.ErrInvalidConfig, err)
	}
	return &Tokenizer{enc: enc, encoding: encoding}, nil
}

// Encode returns the token sequence for text. Special-token markers in the
// text are encoded as ordinary text.
func (t *Tokenizer) Encode(text string) []int {
	return t.enc.EncodeOrdinary(text)
}

// Decode returns the text for a token sequence.
func (t *Tokenizer) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}

// Count returns the number of tokens in text.
func (t *Tokenizer) Count(text string) int {
	return len(t.Encode(text))
}

// Encoding returns the vocabulary name.
func (t *Tokenizer) Encoding() string {
	return t.encoding
}

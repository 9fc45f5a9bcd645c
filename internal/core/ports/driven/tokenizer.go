package driven

// Tokenizer encodes text against one fixed, versioned vocabulary.
// A single Tokenizer is used for a whole run so chunk boundaries and
// token counts agree with each other.
type Tokenizer interface {
	// Encode returns the token sequence for text.
	Encode(text string) []int

	// Decode returns the text for a token sequence.
	Decode(tokens []int) string

	// Count returns len(Encode(text)).
	Count(text string) int

	// Encoding returns the name of the vocabulary, e.g. "cl100k_base".
	Encoding() string
}

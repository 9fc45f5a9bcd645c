package domain

import "strings"

// SentinelNoChange is the literal reply that tells the pipeline to leave the document alone.
const SentinelNoChange = "No change needed"

// IsNoChange reports whether a model reply is the no-change sentinel.
// The comparison trims surrounding whitespace and is case-sensitive.
func IsNoChange(reply string) bool {
	return strings.TrimSpace(reply) == SentinelNoChange
}

// Chunk is a token-bounded substring of the aggregated source tree.
// Chunks are produced in source order and summarised independently.
type Chunk struct {
	// Index is the ordinal position within the chunk sequence.
	Index int

	// Text is the decoded content of the token slice.
	Text string

	// Tokens is the number of tokens in the slice.
	Tokens int
}

// Summary is the model's reply for one chunk.
type Summary struct {
	// Index matches the Chunk it was produced from.
	Index int

	// Text is the summary content.
	Text string

	// Cached is true when the summary came from the summary cache.
	Cached bool
}

// Snapshot is the previous version of the document, read once per run.
type Snapshot struct {
	// Path is where the document lives.
	Path string

	// Content is the file content, empty when the file is absent.
	Content string

	// Exists is false when the file has not been created yet.
	Exists bool
}

// Synthesis is the Synthesizer's interpretation of the final model reply.
type Synthesis struct {
	// Content is the candidate document body. Empty when NoChange is set.
	Content string

	// NoChange is true when the model replied with the sentinel.
	NoChange bool
}

// Candidate returns the text handed to the persister.
// A no-change synthesis yields the sentinel itself.
func (s Synthesis) Candidate() string {
	if s.NoChange {
		return SentinelNoChange
	}
	return s.Content
}

// Decision is the outcome of the change detector.
type Decision string

// Available decisions.
const (
	// DecisionCreate means no document existed and the candidate was written.
	DecisionCreate Decision = "create"

	// DecisionOverwrite means the content differed and the candidate replaced it.
	DecisionOverwrite Decision = "overwrite"

	// DecisionSkipIdentical means the content matched after trimming whitespace.
	DecisionSkipIdentical Decision = "skip"

	// DecisionSkipNoChange means the model declared no change; nothing was compared.
	DecisionSkipNoChange Decision = "skip-no-change"
)

// IsSkip returns true if nothing was written.
func (d Decision) IsSkip() bool {
	return d == DecisionSkipIdentical || d == DecisionSkipNoChange
}

// Wrote returns true if the document was written.
func (d Decision) Wrote() bool {
	return d == DecisionCreate || d == DecisionOverwrite
}

// String returns the string representation.
func (d Decision) String() string {
	return string(d)
}

// Description returns a human-readable description of the decision.
func (d Decision) Description() string {
	switch d {
	case DecisionCreate:
		return "document created"
	case DecisionOverwrite:
		return "document updated"
	case DecisionSkipIdentical:
		return "no changes in document"
	case DecisionSkipNoChange:
		return "model indicated no change needed"
	default:
		return "unknown"
	}
}

// ChangeResult is returned by the persister.
type ChangeResult struct {
	Decision Decision

	// Diff is the unified diff logged for an overwrite. Empty otherwise.
	Diff string
}

// Changed returns true if the run produced a new document version.
func (r ChangeResult) Changed() bool {
	return r.Decision.Wrote()
}

package driven

import (
	"context"

	"github.com/custodia-labs/faqgen/internal/core/domain"
)

// PublishRequest describes a changed document to propose upstream.
type PublishRequest struct {
	// RunID identifies the run; used to name the branch.
	RunID string

	// Path is the document path relative to the repository root.
	Path string

	// Content is the new document body.
	Content string

	// Decision is create or overwrite.
	Decision domain.Decision

	// Diff is the unified diff for an overwrite.
	Diff string
}

// Publisher proposes a changed document, e.g. as a pull request.
type Publisher interface {
	// Publish commits the document to a new branch and opens a review request.
	// Returns the URL of the review request.
	Publish(ctx context.Context, req PublishRequest) (string, error)
}

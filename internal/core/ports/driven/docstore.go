package driven

import (
	"context"

	"github.com/custodia-labs/faqgen/internal/core/domain"
)

// DocumentStore reads and writes the FAQ document.
type DocumentStore interface {
	// Read returns the current document. An absent document is not an error:
	// the snapshot has Exists=false and empty Content. Any other I/O failure
	// is returned.
	Read(ctx context.Context) (domain.Snapshot, error)

	// Write replaces the document's full contents. Readers never observe a
	// partially written document.
	Write(ctx context.Context, content string) error

	// Path returns the document location.
	Path() string
}

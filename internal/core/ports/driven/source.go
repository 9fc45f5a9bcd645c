package driven

import "context"

// SourceReader aggregates eligible files under a root into one document.
// Each file contributes its relative path followed by its contents, and
// files are separated by blank lines.
type SourceReader interface {
	// Read walks the tree and returns the aggregated text.
	// Files that cannot be decoded are skipped with a warning.
	Read(ctx context.Context) (string, error)

	// Root returns the directory being read.
	Root() string
}

// SourceWatcher notifies when eligible source files change.
type SourceWatcher interface {
	// Watch returns once watching has started. One value is sent per settled
	// batch of changed paths, and the channel is closed when ctx ends.
	Watch(ctx context.Context) (<-chan []string, error)
}

package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/faqgen/internal/core/domain"
	"github.com/custodia-labs/faqgen/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu      sync.RWMutex
	path    string
	content string
	exists  bool
	writes  int
}

// NewDocumentStore creates an empty in-memory document store.
func NewDocumentStore(path string) *DocumentStore {
	return &DocumentStore{path: path}
}

// NewDocumentStoreWith creates a store seeded with an existing document.
func NewDocumentStoreWith(path, content string) *DocumentStore {
	return &DocumentStore{path: path, content: content, exists: true}
}

// Read returns the current document.
func (s *DocumentStore) Read(_ context.Context) (domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Snapshot{Path: s.path, Content: s.content, Exists: s.exists}, nil
}

// Write replaces the document.
func (s *DocumentStore) Write(ctx context.Context, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content = content
	s.exists = true
	s.writes++
	return nil
}

// Path returns the document location.
func (s *DocumentStore) Path() string {
	return s.path
}

// Writes returns how many times Write succeeded.
func (s *DocumentStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

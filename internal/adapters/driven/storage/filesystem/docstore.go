// Package filesystem stores the FAQ document as a file on local disk.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/custodia-labs/faqgen/internal/core/domain"
	"github.com/custodia-labs/faqgen/internal/core/ports/driven"
)

// defaultPerm is used for documents that do not exist yet.
const defaultPerm fs.FileMode = 0644

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore reads and atomically replaces a single file.
type DocumentStore struct {
	path string
}

// NewDocumentStore creates a store for the file at path.
func NewDocumentStore(path string) *DocumentStore {
	return &DocumentStore{path: path}
}

// Path returns the document location.
func (s *DocumentStore) Path() string {
	return s.path
}

// Read returns the current document. A missing file yields Exists=false.
func (s *DocumentStore) Read(ctx context.Context) (domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Snapshot{Path: s.path}, nil
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	return domain.Snapshot{Path: s.path, Content: string(data), Exists: true}, nil
}

// Write replaces the document through a temporary file in the same
// directory followed by a rename, so readers see the old or the new file.
func (s *DocumentStore) Write(ctx context.Context, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	perm := defaultPerm
	if info, err := os.Stat(s.path); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := writeAndSync(tmp, content, perm); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", s.path, err)
	}

	// Best effort; not every platform can fsync a directory.
	_ = syncDir(dir)
	return nil
}

func writeAndSync(f *os.File, content string, perm fs.FileMode) error {
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(perm); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

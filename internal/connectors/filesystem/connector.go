// Package filesystem reads a local source tree into one document and
// watches it for changes.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/faqgen/internal/core/domain"
	"github.com/custodia-labs/faqgen/internal/core/ports/driven"
	"github.com/custodia-labs/faqgen/internal/logger"
)

// DefaultDebounce is how long the tree must be quiet before a batch is sent.
const DefaultDebounce = 2 * time.Second

// fileSeparator separates files in the aggregated text.
const fileSeparator = "\n\n"

// Ensure Connector implements the interfaces.
var (
	_ driven.SourceReader  = (*Connector)(nil)
	_ driven.SourceWatcher = (*Connector)(nil)
)

// Connector aggregates and watches files under a root directory.
type Connector struct {
	root       string
	extensions []string
	skipHidden bool
	debounce   time.Duration

	mu       sync.Mutex
	closed   bool
	watchers []*fsnotify.Watcher
}

// Option configures a Connector.
type Option func(*Connector)

// WithExtensions sets the file suffixes that are read.
func WithExtensions(exts ...string) Option {
	return func(c *Connector) {
		c.extensions = exts
	}
}

// WithSkipHidden controls whether dot-files and dot-directories are ignored.
func WithSkipHidden(skip bool) Option {
	return func(c *Connector) {
		c.skipHidden = skip
	}
}

// WithDebounce sets the quiet period for Watch.
func WithDebounce(d time.Duration) Option {
	return func(c *Connector) {
		c.debounce = d
	}
}

// New creates a connector rooted at root.
func New(root string, opts ...Option) *Connector {
	c := &Connector{
		root:       root,
		extensions: domain.DefaultExtensions(),
		skipHidden: true,
		debounce:   DefaultDebounce,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromSettings creates a connector from source settings.
func NewFromSettings(s domain.SourceSettings) *Connector {
	return New(ResolveRoot(s.Root), WithExtensions(s.Extensions...), WithSkipHidden(s.SkipHidden))
}

// Root returns the directory being read.
func (c *Connector) Root() string {
	return c.root
}

// Read walks the tree in lexical order and concatenates every eligible file
// as "File: <relative path>\n<content>", separated by blank lines.
// Files that are not valid UTF-8 are skipped with a warning.
func (c *Connector) Read(ctx context.Context) (string, error) {
	if err := c.checkRoot(); err != nil {
		return "", err
	}

	var (
		parts   []string
		skipped int
	)
	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, relErr := filepath.Rel(c.root, path)
		if relErr != nil {
			return relErr
		}
		if d.IsDir() {
			if rel != "." && c.skipHidden && isHidden(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !c.eligible(rel) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", rel, err)
		}
		if !utf8.Valid(data) {
			logger.Warn("Skipping file %s: not valid UTF-8", rel)
			skipped++
			return nil
		}

		parts = append(parts, "File: "+filepath.ToSlash(rel)+"\n"+string(data))
		logger.Debug("read %s (%d bytes)", rel, len(data))
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("read source tree: %w", err)
	}

	logger.Debug("aggregated %d files from %s (%d skipped)", len(parts), c.root, skipped)
	return strings.Join(parts, fileSeparator), nil
}

// Watch reports batches of changed eligible files, as paths relative to the root.
// New directories are added to the watch as they appear.
func (c *Connector) Watch(ctx context.Context) (<-chan []string, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, errors.New("connector closed")
	}
	c.mu.Unlock()

	if err := c.checkRoot(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := c.addTree(watcher, c.root); err != nil {
		watcher.Close()
		return nil, err
	}

	c.mu.Lock()
	c.watchers = append(c.watchers, watcher)
	c.mu.Unlock()

	changes := make(chan []string)
	go c.watchLoop(ctx, watcher, changes)
	return changes, nil
}

func (c *Connector) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, changes chan<- []string) {
	defer close(changes)
	defer watcher.Close()

	pending := make(map[string]struct{})
	timer := time.NewTimer(c.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			rel, ok := c.handleFsEvent(watcher, event)
			if !ok {
				continue
			}
			pending[rel] = struct{}{}
			timer.Reset(c.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watch error: %v", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := make([]string, 0, len(pending))
			for rel := range pending {
				batch = append(batch, rel)
			}
			slices.Sort(batch)
			clear(pending)

			select {
			case changes <- batch:
			case <-ctx.Done():
				return
			}
		}
	}
}

// handleFsEvent returns the relative path of an eligible changed file.
func (c *Connector) handleFsEvent(watcher *fsnotify.Watcher, event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}

	rel, err := filepath.Rel(c.root, event.Name)
	if err != nil {
		return "", false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !(c.skipHidden && isHidden(rel)) && watcher != nil {
				if err := c.addTree(watcher, event.Name); err != nil {
					logger.Warn("watch %s: %v", rel, err)
				}
			}
			return "", false
		}
	}

	if !c.eligible(rel) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// addTree watches dir and every non-hidden directory below it.
func (c *Connector) addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(c.root, path)
		if rel != "." && c.skipHidden && isHidden(rel) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// Close stops every active watch. Safe to call more than once.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	var errs []error
	for _, w := range c.watchers {
		errs = append(errs, w.Close())
	}
	c.watchers = nil
	return errors.Join(errs...)
}

func (c *Connector) checkRoot() error {
	info, err := os.Stat(c.root)
	if err != nil {
		return fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path error: %s is not a directory", c.root)
	}
	return nil
}

func (c *Connector) eligible(rel string) bool {
	if c.skipHidden && isHidden(rel) {
		return false
	}
	for _, ext := range c.extensions {
		if strings.HasSuffix(rel, ext) {
			return true
		}
	}
	return false
}

// isHidden reports whether any path component starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

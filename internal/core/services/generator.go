package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/faqgen/internal/core/domain"
	"github.com/custodia-labs/faqgen/internal/core/ports/driven"
	"github.com/custodia-labs/faqgen/internal/core/ports/driving"
	"github.com/custodia-labs/faqgen/internal/logger"
)

// Ensure Generator implements the interfaces.
var (
	_ driving.FAQGenerator = (*Generator)(nil)
	_ driving.TokenCounter = (*Generator)(nil)
	_ driving.TokenCounter = (*TokenCounter)(nil)
)

const lockReleaseTimeout = 5 * time.Second

// Generator runs the whole pipeline: aggregate, chunk, summarise,
// synthesise, persist and optionally publish.
type Generator struct {
	source      driven.SourceReader
	tokenizer   driven.Tokenizer
	chunker     driven.Chunker
	summarizer  *Summarizer
	synthesizer *Synthesizer
	persister   *Persister
	store       driven.DocumentStore

	timeout     time.Duration
	lock        driven.RunLock
	lockTTL     time.Duration
	publisher   driven.Publisher
	publishPath string
	newRunID    func() string

	// running admits one run at a time within this process.
	running sync.Mutex
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithRunTimeout bounds a whole run. Zero disables the deadline.
func WithRunTimeout(d time.Duration) GeneratorOption {
	return func(g *Generator) {
		g.timeout = d
	}
}

// WithRunLock serialises runs that target the same document.
func WithRunLock(l driven.RunLock, ttl time.Duration) GeneratorOption {
	return func(g *Generator) {
		g.lock = l
		g.lockTTL = ttl
	}
}

// WithPublisher proposes changed documents upstream.
func WithPublisher(p driven.Publisher) GeneratorOption {
	return func(g *Generator) {
		g.publisher = p
	}
}

// WithPublishPath sets the document's path inside the repository. Without
// it the path is derived from the document store path and the source root.
func WithPublishPath(p string) GeneratorOption {
	return func(g *Generator) {
		g.publishPath = p
	}
}

// WithRunIDs overrides run ID generation.
func WithRunIDs(fn func() string) GeneratorOption {
	return func(g *Generator) {
		g.newRunID = fn
	}
}

// NewGenerator creates a pipeline over the given components.
func NewGenerator(
	source driven.SourceReader,
	tokenizer driven.Tokenizer,
	chunker driven.Chunker,
	summarizer *Summarizer,
	synthesizer *Synthesizer,
	store driven.DocumentStore,
	opts ...GeneratorOption,
) *Generator {
	g := &Generator{
		source:      source,
		tokenizer:   tokenizer,
		chunker:     chunker,
		summarizer:  summarizer,
		synthesizer: synthesizer,
		persister:   NewPersister(store),
		store:       store,
		lockTTL:     domain.DefaultLockTTL,
		newRunID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run executes one pipeline run. A skip outcome is a successful run.
// Any terminal failure aborts the run before anything is written.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (g *Generator) Run(ctx context.Context) (report *domain.RunReport, err error) {
	start := time.Now()
	report = &domain.RunReport{RunID: g.newRunID()}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	logger.Info("Run %s started", report.RunID)
	defer func() {
		report.Duration = time.Since(start)
		if err != nil {
			logger.Error("Run %s failed after %s: %v", report.RunID, report.Duration.Round(time.Millisecond), err)
			return
		}
		logger.Info("Run %s finished in %s: %s", report.RunID, report.Duration.Round(time.Millisecond),
			report.Result.Decision.Description())
	}()

	// 1. Serialise with other runs on the same document, in this process and across processes
	if !g.running.TryLock() {
		return report, fmt.Errorf("%w: %s", domain.ErrRunInProgress, g.store.Path())
	}
	defer g.running.Unlock()

	var repoPath string
	if g.publisher != nil {
		if repoPath, err = g.repoPath(); err != nil {
			return report, fmt.Errorf("publish: %w", err)
		}
	}

	if g.lock != nil {
		name := g.store.Path()
		acquired, lockErr := g.lock.Acquire(ctx, name, g.lockTTL)
		if lockErr != nil {
			return report, fmt.Errorf("acquire run lock: %w", lockErr)
		}
		if !acquired {
			return report, fmt.Errorf("%w: %s", domain.ErrRunInProgress, g.store.Path())
		}
		defer g.release(ctx, name)
	}

	// 2. Aggregate and chunk the source tree
	logger.Section("Reading codebase")
	text, err := g.source.Read(ctx)
	if err != nil {
		return report, fmt.Errorf("read source tree: %w", err)
	}
	report.SourceTokens = g.tokenizer.Count(text)
	logger.Info("Total codebase size: %d tokens", report.SourceTokens)

	logger.Section("Chunking codebase")
	chunks := g.chunker.Split(text)
	report.Chunks = len(chunks)
	logger.Info("Total chunks created: %d", report.Chunks)

	// 3. Summarise every chunk; all-or-nothing
	logger.Section("Summarising chunks")
	summaries, err := g.summarizer.SummarizeAll(ctx, chunks)
	if err != nil {
		return report, err
	}
	for _, s := range summaries {
		if s.Cached {
			report.CachedSummaries++
		}
	}
	if report.CachedSummaries > 0 {
		logger.Info("%d of %d summaries served from cache", report.CachedSummaries, report.Chunks)
	}

	// 4. Read the previous document once; the same snapshot feeds the prompt and the comparison
	snapshot, err := g.store.Read(ctx)
	if err != nil {
		return report, fmt.Errorf("read %s: %w", g.store.Path(), err)
	}

	logger.Section("Generating FAQ")
	synthesis, err := g.synthesizer.Build(ctx, summaries, snapshot)
	if err != nil {
		return report, err
	}

	// 5. Persist only a genuine change
	result, err := g.persister.ApplySnapshot(ctx, synthesis.Candidate(), snapshot)
	if err != nil {
		return report, err
	}
	report.Result = result

	if !result.Changed() {
		logger.Info("No changes detected. Skipping publish.")
		return report, nil
	}
	logger.Info("Changes saved to %s", g.store.Path())

	// 6. Publish
	if g.publisher == nil {
		return report, nil
	}
	url, err := g.publisher.Publish(ctx, driven.PublishRequest{
		RunID:    report.RunID,
		Path:     repoPath,
		Content:  synthesis.Content,
		Decision: result.Decision,
		Diff:     result.Diff,
	})
	if err != nil {
		return report, fmt.Errorf("publish: %w", err)
	}
	report.PublishURL = url
	logger.Info("Opened pull request %s", url)
	return report, nil
}

func (g *Generator) repoPath() (string, error) {
	if g.publishPath != "" {
		return RepoPath(g.publishPath, "")
	}
	return RepoPath(g.store.Path(), g.source.Root())
}

// RepoPath returns docPath as a clean, slash-separated path relative to the
// repository root. Relative paths are taken as repository-relative; an
// absolute path is made relative to root and must lie under it.
func RepoPath(docPath, root string) (string, error) {
	p := filepath.Clean(docPath)
	if filepath.IsAbs(p) {
		if root == "" {
			return "", fmt.Errorf("document path %q must be relative to the repository", docPath)
		}
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return "", fmt.Errorf("resolve source root: %w", err)
		}
		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			return "", fmt.Errorf("document path %q: %w", docPath, err)
		}
		p = rel
	}

	p = filepath.ToSlash(p)
	if p == "." || p == ".." || strings.HasPrefix(p, "../") || path.IsAbs(p) {
		return "", fmt.Errorf("document path %q is outside the repository; set publish.path", docPath)
	}
	return p, nil
}

func (g *Generator) release(ctx context.Context, name string) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lockReleaseTimeout)
	defer cancel()
	if err := g.lock.Release(releaseCtx, name); err != nil {
		logger.Warn("release run lock: %v", err)
	}
}

// Document returns the current document snapshot.
func (g *Generator) Document(ctx context.Context) (domain.Snapshot, error) {
	return g.store.Read(ctx)
}

// CountTokens aggregates the source tree and reports its size without
// calling the API.
func (g *Generator) CountTokens(ctx context.Context) (*driving.TokenStats, error) {
	return NewTokenCounter(g.source, g.tokenizer, g.chunker).CountTokens(ctx)
}

// TokenCounter measures the aggregated source tree. It needs no completion
// client, so it works without credentials.
type TokenCounter struct {
	source    driven.SourceReader
	tokenizer driven.Tokenizer
	chunker   driven.Chunker
}

// NewTokenCounter creates a counter over the given source.
func NewTokenCounter(source driven.SourceReader, tokenizer driven.Tokenizer, chunker driven.Chunker) *TokenCounter {
	return &TokenCounter{source: source, tokenizer: tokenizer, chunker: chunker}
}

// CountTokens reads the source tree once and returns its token and chunk counts.
func (c *TokenCounter) CountTokens(ctx context.Context) (*driving.TokenStats, error) {
	text, err := c.source.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read source tree: %w", err)
	}
	tokens := c.tokenizer.Count(text)
	maxTokens := c.chunker.MaxTokens()
	chunks := 0
	if maxTokens > 0 {
		chunks = (tokens + maxTokens - 1) / maxTokens
	}
	return &driving.TokenStats{
		Encoding:  c.tokenizer.Encoding(),
		Tokens:    tokens,
		Chunks:    chunks,
		MaxTokens: maxTokens,
	}, nil
}

// IsRunInProgress reports whether err means another run holds the lock.
func IsRunInProgress(err error) bool {
	return errors.Is(err, domain.ErrRunInProgress)
}

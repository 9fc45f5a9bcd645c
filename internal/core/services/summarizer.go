package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/faqgen/internal/core/domain"
	"github.com/custodia-labs/faqgen/internal/core/ports/driven"
	"github.com/custodia-labs/faqgen/internal/logger"
)

// Completer is the part of ResilientClient the summariser and synthesiser need.
type Completer interface {
	Complete(ctx context.Context, prompt string) domain.CompletionResult
	ModelName() string
}

var _ Completer = (*ResilientClient)(nil)

// Summarizer fans chunks out to the completion API and returns one summary
// per chunk in chunk order.
type Summarizer struct {
	completer   Completer
	prompts     driven.PromptStore
	concurrency int
	cache       driven.SummaryCache
	progress    driven.ProgressReporter
}

// SummarizerOption configures a Summarizer.
type SummarizerOption func(*Summarizer)

// WithConcurrency bounds in-flight calls. Zero or negative means unbounded.
func WithConcurrency(n int) SummarizerOption {
	return func(s *Summarizer) {
		s.concurrency = n
	}
}

// WithSummaryCache serves repeated chunks from cache.
func WithSummaryCache(c driven.SummaryCache) SummarizerOption {
	return func(s *Summarizer) {
		s.cache = c
	}
}

// WithProgress reports completed chunks as they arrive.
func WithProgress(p driven.ProgressReporter) SummarizerOption {
	return func(s *Summarizer) {
		s.progress = p
	}
}

// NewSummarizer creates a summariser.
func NewSummarizer(completer Completer, prompts driven.PromptStore, opts ...SummarizerOption) *Summarizer {
	s := &Summarizer{
		completer: completer,
		prompts:   prompts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SummarizeAll summarises every chunk concurrently.
// The i-th summary always corresponds to the i-th chunk, whatever the
// completion order. If any chunk fails terminally the whole call fails and
// the remaining calls are cancelled; no partial result is returned.
func (s *Summarizer) SummarizeAll(ctx context.Context, chunks []domain.Chunk) ([]domain.Summary, error) {
	template, err := s.prompts.Load(driven.PromptSummarise)
	if err != nil {
		return nil, fmt.Errorf("load summarise prompt: %w", err)
	}

	total := len(chunks)
	summaries := make([]domain.Summary, total)

	if s.progress != nil {
		s.progress.Start(total)
		defer s.progress.Finish()
	}

	var (
		mu   sync.Mutex
		done int
	)
	advance := func() {
		mu.Lock()
		defer mu.Unlock()
		done++
		if s.progress != nil {
			s.progress.Advance(done, total)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}

	for i, chunk := range chunks {
		g.Go(func() error {
			summary, err := s.summarize(gctx, template, chunk)
			if err != nil {
				return fmt.Errorf("summarise chunk %d/%d: %w", i+1, total, err)
			}
			summaries[i] = summary
			advance()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (s *Summarizer) summarize(ctx context.Context, template string, chunk domain.Chunk) (domain.Summary, error) {
	prompt := fmt.Sprintf(template, chunk.Text)

	var key string
	if s.cache != nil {
		key = SummaryKey(s.completer.ModelName(), template, chunk.Text)
		cached, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			logger.Warn("summary cache read failed for chunk %d: %v", chunk.Index+1, err)
		case ok:
			logger.Debug("chunk %d served from cache", chunk.Index+1)
			return domain.Summary{Index: chunk.Index, Text: cached, Cached: true}, nil
		}
	}

	result := s.completer.Complete(ctx, prompt)
	if !result.OK() {
		return domain.Summary{}, result.Err()
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, key, result.Text); err != nil {
			logger.Warn("summary cache write failed for chunk %d: %v", chunk.Index+1, err)
		}
	}
	return domain.Summary{Index: chunk.Index, Text: result.Text}, nil
}

// SummaryKey derives the cache key for a chunk summary.
// It changes whenever the model, the prompt template or the chunk text changes.
func SummaryKey(model, template, text string) string {
	h := sha256.New()
	for _, part := range []string{model, template, text} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

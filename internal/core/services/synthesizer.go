package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/faqgen/internal/core/domain"
	"github.com/custodia-labs/faqgen/internal/core/ports/driven"
	"github.com/custodia-labs/faqgen/internal/logger"
)

// summarySeparator joins chunk summaries in the synthesis prompt.
const summarySeparator = "\n\n"

// Synthesizer folds the chunk summaries and the previous document into one
// request and interprets the reply.
type Synthesizer struct {
	completer Completer
	prompts   driven.PromptStore
	tokenizer driven.Tokenizer
}

// NewSynthesizer creates a synthesiser. The tokenizer is optional and only
// used to log the size of the summaries.
func NewSynthesizer(completer Completer, prompts driven.PromptStore, tokenizer driven.Tokenizer) *Synthesizer {
	return &Synthesizer{
		completer: completer,
		prompts:   prompts,
		tokenizer: tokenizer,
	}
}

// JoinSummaries concatenates summaries in slice order, separated by a blank line.
func JoinSummaries(summaries []domain.Summary) string {
	parts := make([]string, len(summaries))
	for i, s := range summaries {
		parts[i] = s.Text
	}
	return strings.Join(parts, summarySeparator)
}

// Prompt renders the synthesis prompt.
func (s *Synthesizer) Prompt(summaries []domain.Summary, previous domain.Snapshot) (string, error) {
	template, err := s.prompts.Load(driven.PromptSynthesise)
	if err != nil {
		return "", fmt.Errorf("load synthesise prompt: %w", err)
	}
	joined := JoinSummaries(summaries)
	if s.tokenizer != nil {
		logger.Info("Token count for summaries: %d", s.tokenizer.Count(joined))
	}
	return fmt.Sprintf(template, joined, previous.Content, domain.SentinelNoChange), nil
}

// Build issues the synthesis request. The reply is either the full candidate
// document or the no-change sentinel; it is never partial.
func (s *Synthesizer) Build(ctx context.Context, summaries []domain.Summary, previous domain.Snapshot) (domain.Synthesis, error) {
	prompt, err := s.Prompt(summaries, previous)
	if err != nil {
		return domain.Synthesis{}, err
	}

	result := s.completer.Complete(ctx, prompt)
	if !result.OK() {
		return domain.Synthesis{}, fmt.Errorf("synthesise document: %w", result.Err())
	}

	if domain.IsNoChange(result.Text) {
		logger.Debug("synthesis returned the no-change sentinel")
		return domain.Synthesis{NoChange: true}, nil
	}
	return domain.Synthesis{Content: result.Text}, nil
}

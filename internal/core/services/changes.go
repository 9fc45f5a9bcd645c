package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/custodia-labs/faqgen/internal/core/domain"
	"github.com/custodia-labs/faqgen/internal/core/ports/driven"
	"github.com/custodia-labs/faqgen/internal/logger"
)

// diffContext is the number of unchanged lines shown around each hunk.
const diffContext = 3

// Persister decides whether a candidate document is a genuine change and
// writes it only if so.
type Persister struct {
	store driven.DocumentStore
}

// NewPersister creates a persister over a document store.
func NewPersister(store driven.DocumentStore) *Persister {
	return &Persister{store: store}
}

// Apply reads the current document and applies the candidate.
// A sentinel candidate is skipped without reading anything.
func (p *Persister) Apply(ctx context.Context, candidate string) (domain.ChangeResult, error) {
	if domain.IsNoChange(candidate) {
		return p.skipNoChange(), nil
	}
	snapshot, err := p.store.Read(ctx)
	if err != nil {
		return domain.ChangeResult{}, fmt.Errorf("read %s: %w", p.store.Path(), err)
	}
	return p.ApplySnapshot(ctx, candidate, snapshot)
}

// ApplySnapshot applies the candidate against a snapshot read earlier in the
// same run, so the prompt and the comparison see the same document.
// Rules, in order: sentinel skips; absent creates; equal after trimming
// skips; anything else overwrites and logs a unified diff.
func (p *Persister) ApplySnapshot(ctx context.Context, candidate string, snapshot domain.Snapshot) (domain.ChangeResult, error) {
	if domain.IsNoChange(candidate) {
		return p.skipNoChange(), nil
	}

	path := p.store.Path()

	if !snapshot.Exists {
		logger.Info("%s does not exist yet. Will be created.", path)
		if err := p.store.Write(ctx, candidate); err != nil {
			return domain.ChangeResult{}, fmt.Errorf("create %s: %w", path, err)
		}
		return domain.ChangeResult{Decision: domain.DecisionCreate}, nil
	}

	if strings.TrimSpace(candidate) == strings.TrimSpace(snapshot.Content) {
		logger.Info("No changes in %s", path)
		return domain.ChangeResult{Decision: domain.DecisionSkipIdentical}, nil
	}

	diff, err := UnifiedDiff(path, snapshot.Content, candidate)
	if err != nil {
		logger.Warn("could not compute diff for %s: %v", path, err)
	} else {
		logger.Block(fmt.Sprintf("Changes detected in %s:", path), diff)
	}

	if err := p.store.Write(ctx, candidate); err != nil {
		return domain.ChangeResult{}, fmt.Errorf("overwrite %s: %w", path, err)
	}
	return domain.ChangeResult{Decision: domain.DecisionOverwrite, Diff: diff}, nil
}

func (p *Persister) skipNoChange() domain.ChangeResult {
	logger.Info("Model indicated no change needed for %s", p.store.Path())
	return domain.ChangeResult{Decision: domain.DecisionSkipNoChange}
}

// UnifiedDiff returns a line-oriented unified diff from before to after.
func UnifiedDiff(path, before, after string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(before),
		B:        splitLines(after),
		FromFile: "Old " + path,
		ToFile:   "New " + path,
		Context:  diffContext,
	})
}

// splitLines splits text into newline-terminated lines. Unlike
// difflib.SplitLines it does not add an empty line for a trailing newline.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		return lines[:len(lines)-1]
	}
	lines[len(lines)-1] += "\n"
	return lines
}

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/faqgen/internal/core/domain"
)

func TestJoinSummaries(t *testing.T) {
	summaries := []domain.Summary{{Index: 0, Text: "a"}, {Index: 1, Text: "b"}, {Index: 2, Text: "c"}}
	assert.Equal(t, "a\n\nb\n\nc", JoinSummaries(summaries))
	assert.Equal(t, "", JoinSummaries(nil))
}

func TestSynthesizer_Prompt(t *testing.T) {
	s := NewSynthesizer(&mockCompleter{}, newMockPromptStore(), newWordTokenizer())
	summaries := []domain.Summary{{Text: "first"}, {Text: "second"}}

	t.Run("includes summaries, previous document and sentinel", func(t *testing.T) {
		prompt, err := s.Prompt(summaries, domain.Snapshot{Path: "FAQ.md", Content: "# Old FAQ", Exists: true})
		require.NoError(t, err)
		assert.Equal(t, "Summaries:\nfirst\n\nsecond\nPrevious:\n# Old FAQ\nIf nothing changes reply No change needed", prompt)
	})

	t.Run("absent document renders empty", func(t *testing.T) {
		prompt, err := s.Prompt(summaries, domain.Snapshot{Path: "FAQ.md"})
		require.NoError(t, err)
		assert.Contains(t, prompt, "Previous:\n\nIf nothing")
	})
}

func TestSynthesizer_Build(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		noChange bool
	}{
		{"full document", "# FAQ\n\n## Getting started\n", false},
		{"exact sentinel", "No change needed", true},
		{"sentinel with whitespace", "\n  No change needed  \n", true},
		{"lowercase is a document", "no change needed", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &mockCompleter{respond: func(string) domain.CompletionResult {
				return domain.Succeeded(tt.reply, 1)
			}}
			s := NewSynthesizer(completer, newMockPromptStore(), nil)

			synthesis, err := s.Build(context.Background(), []domain.Summary{{Text: "x"}}, domain.Snapshot{})

			require.NoError(t, err)
			assert.Equal(t, 1, completer.callCount())
			assert.Equal(t, tt.noChange, synthesis.NoChange)
			if tt.noChange {
				assert.Empty(t, synthesis.Content)
				assert.Equal(t, domain.SentinelNoChange, synthesis.Candidate())
			} else {
				assert.Equal(t, tt.reply, synthesis.Content)
			}
		})
	}
}

func TestSynthesizer_BuildFailure(t *testing.T) {
	completer := &mockCompleter{respond: func(string) domain.CompletionResult {
		return domain.Failed(errors.New("boom"), 3)
	}}
	s := NewSynthesizer(completer, newMockPromptStore(), nil)

	_, err := s.Build(context.Background(), nil, domain.Snapshot{})

	assert.ErrorIs(t, err, domain.ErrTerminalAPI)
	assert.Contains(t, err.Error(), "synthesise document")
}

func TestSynthesizer_MissingPrompt(t *testing.T) {
	prompts := newMockPromptStore()
	delete(prompts.prompts, "synthesise")
	s := NewSynthesizer(&mockCompleter{}, prompts, nil)

	_, err := s.Build(context.Background(), nil, domain.Snapshot{})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

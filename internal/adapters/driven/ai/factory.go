// Package ai provides factory functions for creating completion clients.
package ai

import (
	"fmt"

	anthropicllm "github.com/custodia-labs/faqgen/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/faqgen/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/faqgen/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/faqgen/internal/core/domain"
	"github.com/custodia-labs/faqgen/internal/core/ports/driven"
)

// DefaultBaseURL returns the API base URL used when none is configured.
func DefaultBaseURL(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderMistral:
		return openaillm.DefaultMistralBaseURL
	case domain.AIProviderOpenAI:
		return openaillm.DefaultBaseURL
	case domain.AIProviderAnthropic:
		return anthropicllm.DefaultBaseURL
	case domain.AIProviderOllama:
		return ollamallm.DefaultBaseURL
	default:
		return ""
	}
}

// CreateCompletionClient creates the appropriate completion client based on settings.
// Mistral speaks the OpenAI chat completions wire format and shares its adapter.
func CreateCompletionClient(settings *domain.LLMSettings) (driven.CompletionClient, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: llm settings missing", domain.ErrInvalidConfig)
	}
	if !settings.IsConfigured() {
		if settings.Provider.IsValid() {
			return nil, fmt.Errorf("%w: %w for provider %s", domain.ErrInvalidConfig, domain.ErrMissingCredential, settings.Provider)
		}
		return nil, fmt.Errorf("%w: unsupported LLM provider: %q", domain.ErrInvalidConfig, settings.Provider)
	}

	baseURL := settings.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL(settings.Provider)
	}

	switch settings.Provider {
	case domain.AIProviderMistral, domain.AIProviderOpenAI:
		return openaillm.NewClient(openaillm.Config{
			Provider: settings.Provider.String(),
			APIKey:   settings.APIKey,
			BaseURL:  baseURL,
			Model:    settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewClient(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: baseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderOllama:
		return ollamallm.NewClient(ollamallm.Config{
			BaseURL: baseURL,
			Model:   settings.Model,
		}), nil

	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s", domain.ErrInvalidConfig, settings.Provider)
	}
}

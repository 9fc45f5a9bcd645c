package driven

import "context"

// CompletionClient issues a single chat-completion request.
// Implementations perform exactly one network call per Complete and never retry;
// retries, backoff and pacing belong to the core's resilient client.
//
// Implementations include:
//   - Mistral and OpenAI (chat completions wire format)
//   - Anthropic (messages API)
//   - Ollama (local models)
type CompletionClient interface {
	// Complete returns the first choice's message content.
	// A successful status with no usable choice must return an error wrapping
	// domain.ErrEmptyResponse. Non-2xx statuses return *domain.APIError.
	Complete(ctx context.Context, messages []ChatMessage, opts CompletionOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// CompletionOptions configures sampling.
type CompletionOptions struct {
	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// TopP is the nucleus-sampling cutoff.
	TopP float64

	// MaxTokens is the maximum number of tokens to generate. Zero leaves it to the provider.
	MaxTokens int
}

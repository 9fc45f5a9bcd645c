package domain

import (
	"fmt"
	"strings"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies a completion API provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderMistral is the Mistral cloud API (OpenAI-compatible wire format).
	AIProviderMistral AIProvider = "mistral"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderMistral, AIProviderOpenAI, AIProviderAnthropic, AIProviderOllama:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderMistral || p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderMistral:
		return "Mistral (cloud)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	default:
		return unknownDescription
	}
}

// DefaultModel returns the model used when none is configured.
func (p AIProvider) DefaultModel() string {
	switch p {
	case AIProviderMistral:
		return "mistral-small-latest"
	case AIProviderOpenAI:
		return "gpt-4o-mini"
	case AIProviderAnthropic:
		return "claude-3-5-haiku-latest"
	case AIProviderOllama:
		return "llama3.2"
	default:
		return ""
	}
}

// CacheBackend selects the summary cache implementation.
type CacheBackend string

// Available cache backends.
const (
	CacheNone   CacheBackend = "none"
	CacheMemory CacheBackend = "memory"
	CacheSQLite CacheBackend = "sqlite"
	CacheRedis  CacheBackend = "redis"
)

// IsValid returns true if the backend is recognised.
func (b CacheBackend) IsValid() bool {
	switch b {
	case CacheNone, CacheMemory, CacheSQLite, CacheRedis:
		return true
	default:
		return false
	}
}

// LockBackend selects the run lock implementation.
type LockBackend string

// Available lock backends.
const (
	LockNone  LockBackend = "none"
	LockRedis LockBackend = "redis"
)

// IsValid returns true if the backend is recognised.
func (b LockBackend) IsValid() bool {
	return b == LockNone || b == LockRedis
}

// LLMSettings configures the completion API and its retry policy.
type LLMSettings struct {
	Provider AIProvider
	BaseURL  string
	Model    string
	APIKey   string

	// Temperature is the sampling temperature sent with every request.
	Temperature float64

	// TopP is the nucleus-sampling cutoff sent with every request.
	TopP float64

	// Timeout bounds a single attempt.
	Timeout time.Duration

	// MaxAttempts is the total number of attempts per call.
	MaxAttempts int

	// BackoffUnit is multiplied by 2^attempt between attempts.
	BackoffUnit time.Duration

	// RequestsPerSecond paces requests across all goroutines. Zero disables pacing.
	RequestsPerSecond float64

	// Burst is the token bucket size used with RequestsPerSecond.
	Burst int
}

// IsConfigured returns true if the provider can be constructed.
func (s *LLMSettings) IsConfigured() bool {
	if !s.Provider.IsValid() {
		return false
	}
	if s.Provider.RequiresAPIKey() && s.APIKey == "" {
		return false
	}
	return true
}

// ChunkingSettings configures the tokenizer and chunker.
type ChunkingSettings struct {
	Encoding  string
	MaxTokens int
}

// PipelineSettings configures fan-out and the run deadline.
type PipelineSettings struct {
	// Concurrency bounds in-flight summarisation calls. Zero means unbounded.
	Concurrency int

	// Timeout is the deadline for a whole run. Zero disables it.
	Timeout time.Duration
}

// SourceSettings configures the source aggregator.
type SourceSettings struct {
	Root       string
	Extensions []string
	SkipHidden bool
}

// OutputSettings configures the document store.
type OutputSettings struct {
	Path string
}

// PromptSettings configures the prompt store.
type PromptSettings struct {
	// Dir holds user-editable prompt files. Empty uses built-in prompts only.
	Dir string
}

// CacheSettings configures the summary cache.
type CacheSettings struct {
	Backend   CacheBackend
	SQLiteDir string
	RedisAddr string
	TTL       time.Duration
}

// LockSettings configures the run lock.
type LockSettings struct {
	Backend   LockBackend
	RedisAddr string
	TTL       time.Duration
}

// PublishSettings configures the pull request publisher.
type PublishSettings struct {
	Enabled      bool
	Owner        string
	Repo         string
	BaseBranch   string
	BranchPrefix string
	Token        string

	// Path is the document path inside the repository. Empty derives it
	// from the output path and the source root.
	Path string
}

// Config is built once at process start and passed into every constructor.
type Config struct {
	LLM      LLMSettings
	Chunking ChunkingSettings
	Pipeline PipelineSettings
	Source   SourceSettings
	Output   OutputSettings
	Prompts  PromptSettings
	Cache    CacheSettings
	Lock     LockSettings
	Publish  PublishSettings
}

// Default values.
const (
	DefaultEncoding     = "cl100k_base"
	DefaultMaxTokens    = 2000
	DefaultTemperature  = 0.3
	DefaultTopP         = 0.95
	DefaultTimeout      = 60 * time.Second
	DefaultMaxAttempts  = 3
	DefaultBackoffUnit  = time.Second
	DefaultRunTimeout   = 30 * time.Minute
	DefaultOutputPath   = "FAQ.md"
	DefaultBaseBranch   = "main"
	DefaultBranchPrefix = "faqgen/update"
	DefaultCacheTTL     = 30 * 24 * time.Hour
	DefaultLockTTL      = 35 * time.Minute
)

// DefaultExtensions are the source file extensions read by default.
func DefaultExtensions() []string {
	return []string{".py", ".js", ".ts", ".tsx", ".jsx", ".go", ".java"}
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		LLM: LLMSettings{
			Provider:    AIProviderMistral,
			Model:       AIProviderMistral.DefaultModel(),
			Temperature: DefaultTemperature,
			TopP:        DefaultTopP,
			Timeout:     DefaultTimeout,
			MaxAttempts: DefaultMaxAttempts,
			BackoffUnit: DefaultBackoffUnit,
			Burst:       1,
		},
		Chunking: ChunkingSettings{
			Encoding:  DefaultEncoding,
			MaxTokens: DefaultMaxTokens,
		},
		Pipeline: PipelineSettings{
			Timeout: DefaultRunTimeout,
		},
		Source: SourceSettings{
			Root:       ".",
			Extensions: DefaultExtensions(),
			SkipHidden: true,
		},
		Output: OutputSettings{Path: DefaultOutputPath},
		Cache: CacheSettings{
			Backend: CacheNone,
			TTL:     DefaultCacheTTL,
		},
		Lock: LockSettings{
			Backend: LockNone,
			TTL:     DefaultLockTTL,
		},
		Publish: PublishSettings{
			BaseBranch:   DefaultBaseBranch,
			BranchPrefix: DefaultBranchPrefix,
		},
	}
}

// Validate checks the configuration. Every error wraps ErrInvalidConfig.
//
//nolint:gocyclo // Flat list of independent field checks
func (c *Config) Validate() error {
	if !c.LLM.Provider.IsValid() {
		return ConfigError("llm.provider", "unknown provider %q", c.LLM.Provider)
	}
	if c.LLM.Provider.RequiresAPIKey() && strings.TrimSpace(c.LLM.APIKey) == "" {
		return fmt.Errorf("%w: %w for provider %s", ErrInvalidConfig, ErrMissingCredential, c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return ConfigError("llm.model", "must not be empty")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return ConfigError("llm.temperature", "%v is outside [0, 2]", c.LLM.Temperature)
	}
	if c.LLM.TopP <= 0 || c.LLM.TopP > 1 {
		return ConfigError("llm.top_p", "%v is outside (0, 1]", c.LLM.TopP)
	}
	if c.LLM.Timeout <= 0 {
		return ConfigError("llm.timeout", "must be positive")
	}
	if c.LLM.MaxAttempts <= 0 {
		return ConfigError("llm.max_attempts", "must be positive, got %d", c.LLM.MaxAttempts)
	}
	if c.LLM.BackoffUnit < 0 {
		return ConfigError("llm.backoff_unit", "must not be negative")
	}
	if c.LLM.RequestsPerSecond < 0 {
		return ConfigError("llm.requests_per_second", "must not be negative")
	}
	if c.Chunking.MaxTokens <= 0 {
		return fmt.Errorf("%w: %w (got %d)", ErrInvalidConfig, ErrInvalidChunkSize, c.Chunking.MaxTokens)
	}
	if c.Chunking.Encoding == "" {
		return ConfigError("chunking.encoding", "must not be empty")
	}
	if c.Pipeline.Concurrency < 0 {
		return ConfigError("pipeline.concurrency", "must not be negative")
	}
	if c.Pipeline.Timeout < 0 {
		return ConfigError("pipeline.timeout", "must not be negative")
	}
	if c.Source.Root == "" {
		return ConfigError("source.root", "must not be empty")
	}
	if c.Output.Path == "" {
		return ConfigError("output.path", "must not be empty")
	}
	if !c.Cache.Backend.IsValid() {
		return ConfigError("cache.backend", "unknown backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		return ConfigError("cache.redis_addr", "required for the redis backend")
	}
	if !c.Lock.Backend.IsValid() {
		return ConfigError("lock.backend", "unknown backend %q", c.Lock.Backend)
	}
	if c.Lock.Backend == LockRedis && c.Lock.RedisAddr == "" {
		return ConfigError("lock.redis_addr", "required for the redis backend")
	}
	if c.Publish.Enabled {
		if c.Publish.Owner == "" || c.Publish.Repo == "" {
			return ConfigError("publish", "owner and repo are required when publishing")
		}
		if c.Publish.Token == "" {
			return fmt.Errorf("%w: %w for publishing", ErrInvalidConfig, ErrMissingCredential)
		}
		if c.Publish.BaseBranch == "" {
			return ConfigError("publish.base_branch", "must not be empty")
		}
	}
	return nil
}

// HasExtension reports whether name ends with one of the configured extensions.
func (s *SourceSettings) HasExtension(name string) bool {
	for _, ext := range s.Extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

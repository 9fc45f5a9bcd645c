package file

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/faqgen/internal/core/domain"
	"github.com/custodia-labs/faqgen/internal/core/ports/driven"
)

// DefaultConfigFile is the config file name looked up in the working directory.
const DefaultConfigFile = "faqgen.toml"

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// Environment variables read on top of the file.
const (
	EnvProvider    = "FAQGEN_PROVIDER"
	EnvAPIKey      = "FAQGEN_API_KEY"
	EnvModel       = "FAQGEN_MODEL"
	EnvBaseURL     = "FAQGEN_BASE_URL"
	EnvOutput      = "FAQGEN_OUTPUT"
	EnvSourceRoot  = "FAQGEN_SOURCE"
	EnvConcurrency = "FAQGEN_CONCURRENCY"
	EnvMaxTokens   = "FAQGEN_MAX_TOKENS"
	EnvRedisAddr   = "FAQGEN_REDIS_ADDR"
	EnvPublish     = "FAQGEN_PUBLISH"
	EnvGitHubToken = "GITHUB_TOKEN"
	EnvGitHubRepo  = "GITHUB_REPOSITORY"
)

// providerKeyEnv maps providers to their conventional API key variable.
var providerKeyEnv = map[domain.AIProvider]string{
	domain.AIProviderMistral:   "MISTRAL_API_KEY",
	domain.AIProviderOpenAI:    "OPENAI_API_KEY",
	domain.AIProviderAnthropic: "ANTHROPIC_API_KEY",
}

// ConfigStore is a file-based implementation of driven.ConfigStore.
// Files ending in .yaml or .yml are read as YAML, anything else as TOML.
// Values resolve in order: built-in defaults, the file, then the environment.
type ConfigStore struct {
	filePath  string
	lookupEnv func(string) (string, bool)
}

// ConfigOption configures a ConfigStore.
type ConfigOption func(*ConfigStore)

// WithLookupEnv replaces os.LookupEnv, mainly for tests.
func WithLookupEnv(fn func(string) (string, bool)) ConfigOption {
	return func(s *ConfigStore) {
		s.lookupEnv = fn
	}
}

// NewConfigStore creates a config store for the given file.
// If path is empty, defaults to faqgen.toml in the working directory.
func NewConfigStore(path string, opts ...ConfigOption) *ConfigStore {
	if path == "" {
		path = DefaultConfigFile
	}
	s := &ConfigStore{
		filePath:  path,
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the config file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// Load returns the resolved configuration. A missing file is not an error.
// The result is not validated; callers decide which fields they need.
func (s *ConfigStore) Load() (*domain.Config, error) {
	fc := defaultFileConfig()

	data, err := os.ReadFile(s.filePath)
	switch {
	case err == nil:
		if err := s.decode(data, &fc); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidConfig, s.filePath, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Defaults and environment only
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := s.applyEnv(&fc); err != nil {
		return nil, err
	}

	cfg, err := fc.toDomain()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// WriteDefault writes a commented default configuration file.
// Returns an error if the file already exists.
func (s *ConfigStore) WriteDefault() error {
	if _, err := os.Stat(s.filePath); err == nil {
		return fmt.Errorf("config file %s already exists", s.filePath)
	}

	data, err := s.encode(defaultFileConfig())
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}

	if dir := filepath.Dir(s.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	return os.WriteFile(s.filePath, data, 0600)
}

func (s *ConfigStore) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(s.filePath))
	return ext == ".yaml" || ext == ".yml"
}

func (s *ConfigStore) decode(data []byte, fc *fileConfig) error {
	if s.isYAML() {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(fc); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(fc)
}

func (s *ConfigStore) encode(fc fileConfig) ([]byte, error) {
	if s.isYAML() {
		return yaml.Marshal(fc)
	}
	return toml.Marshal(fc)
}

// applyEnv overlays environment variables onto the file values.
//
//nolint:gocyclo // Flat list of independent variables
func (s *ConfigStore) applyEnv(fc *fileConfig) error {
	if v, ok := s.env(EnvProvider); ok {
		fc.LLM.Provider = v
	}
	if v, ok := s.env(EnvAPIKey); ok {
		fc.LLM.APIKey = v
	}
	if fc.LLM.APIKey == "" {
		if name, ok := providerKeyEnv[domain.AIProvider(fc.LLM.Provider)]; ok {
			if v, ok := s.env(name); ok {
				fc.LLM.APIKey = v
			}
		}
	}
	if v, ok := s.env(EnvModel); ok {
		fc.LLM.Model = v
	}
	if v, ok := s.env(EnvBaseURL); ok {
		fc.LLM.BaseURL = v
	}
	if v, ok := s.env(EnvOutput); ok {
		fc.Output.Path = v
	}
	if v, ok := s.env(EnvSourceRoot); ok {
		fc.Source.Root = v
	}
	if v, ok := s.env(EnvConcurrency); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return domain.ConfigError(EnvConcurrency, "%q is not an integer", v)
		}
		fc.Pipeline.Concurrency = n
	}
	if v, ok := s.env(EnvMaxTokens); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return domain.ConfigError(EnvMaxTokens, "%q is not an integer", v)
		}
		fc.Chunking.MaxTokens = n
	}
	if v, ok := s.env(EnvRedisAddr); ok {
		fc.Cache.RedisAddr = v
		fc.Lock.RedisAddr = v
	}
	if v, ok := s.env(EnvPublish); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return domain.ConfigError(EnvPublish, "%q is not a boolean", v)
		}
		fc.Publish.Enabled = b
	}
	if fc.Publish.Token == "" {
		if v, ok := s.env(EnvGitHubToken); ok {
			fc.Publish.Token = v
		}
	}
	if fc.Publish.Owner == "" && fc.Publish.Repo == "" {
		if v, ok := s.env(EnvGitHubRepo); ok {
			if owner, repo, found := strings.Cut(v, "/"); found {
				fc.Publish.Owner = owner
				fc.Publish.Repo = repo
			}
		}
	}
	return nil
}

// env returns a non-empty environment value.
func (s *ConfigStore) env(name string) (string, bool) {
	v, ok := s.lookupEnv(name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// fileConfig mirrors domain.Config with file tags. Durations are strings.
type fileConfig struct {
	LLM      fileLLM      `toml:"llm" yaml:"llm" comment:"Completion API and retry policy"`
	Chunking fileChunking `toml:"chunking" yaml:"chunking" comment:"Token-bounded chunking"`
	Pipeline filePipeline `toml:"pipeline" yaml:"pipeline"`
	Source   fileSource   `toml:"source" yaml:"source" comment:"Files read into the codebase text"`
	Output   fileOutput   `toml:"output" yaml:"output"`
	Prompts  filePrompts  `toml:"prompts" yaml:"prompts"`
	Cache    fileCache    `toml:"cache" yaml:"cache" comment:"Summary cache: none, memory, sqlite or redis"`
	Lock     fileLock     `toml:"lock" yaml:"lock" comment:"Run lock: none or redis"`
	Publish  filePublish  `toml:"publish" yaml:"publish" comment:"Open a pull request when the document changes"`
}

type fileLLM struct {
	Provider          string  `toml:"provider" yaml:"provider" comment:"mistral, openai, anthropic or ollama"`
	BaseURL           string  `toml:"base_url" yaml:"base_url"`
	Model             string  `toml:"model" yaml:"model" comment:"Empty uses the provider default"`
	APIKey            string  `toml:"api_key" yaml:"api_key" comment:"Prefer FAQGEN_API_KEY or the provider's own variable"`
	Temperature       float64 `toml:"temperature" yaml:"temperature"`
	TopP              float64 `toml:"top_p" yaml:"top_p"`
	Timeout           string  `toml:"timeout" yaml:"timeout" comment:"Per-attempt timeout"`
	MaxAttempts       int     `toml:"max_attempts" yaml:"max_attempts"`
	BackoffUnit       string  `toml:"backoff_unit" yaml:"backoff_unit" comment:"Wait unit*2^attempt between attempts"`
	RequestsPerSecond float64 `toml:"requests_per_second" yaml:"requests_per_second" comment:"0 disables pacing"`
	Burst             int     `toml:"burst" yaml:"burst"`
}

type fileChunking struct {
	Encoding  string `toml:"encoding" yaml:"encoding"`
	MaxTokens int    `toml:"max_tokens" yaml:"max_tokens"`
}

type filePipeline struct {
	Concurrency int    `toml:"concurrency" yaml:"concurrency" comment:"0 summarises every chunk at once"`
	Timeout     string `toml:"timeout" yaml:"timeout" comment:"Deadline for a whole run, 0s disables it"`
}

type fileSource struct {
	Root       string   `toml:"root" yaml:"root"`
	Extensions []string `toml:"extensions" yaml:"extensions"`
	SkipHidden bool     `toml:"skip_hidden" yaml:"skip_hidden"`
}

type fileOutput struct {
	Path string `toml:"path" yaml:"path"`
}

type filePrompts struct {
	Dir string `toml:"dir" yaml:"dir" comment:"Directory of editable prompt files, empty uses built-in prompts"`
}

type fileCache struct {
	Backend   string `toml:"backend" yaml:"backend"`
	SQLiteDir string `toml:"sqlite_dir" yaml:"sqlite_dir"`
	RedisAddr string `toml:"redis_addr" yaml:"redis_addr"`
	TTL       string `toml:"ttl" yaml:"ttl"`
}

type fileLock struct {
	Backend   string `toml:"backend" yaml:"backend"`
	RedisAddr string `toml:"redis_addr" yaml:"redis_addr"`
	TTL       string `toml:"ttl" yaml:"ttl"`
}

type filePublish struct {
	Enabled      bool   `toml:"enabled" yaml:"enabled"`
	Owner        string `toml:"owner" yaml:"owner"`
	Repo         string `toml:"repo" yaml:"repo"`
	BaseBranch   string `toml:"base_branch" yaml:"base_branch"`
	BranchPrefix string `toml:"branch_prefix" yaml:"branch_prefix"`
	Token        string `toml:"token" yaml:"token" comment:"Prefer GITHUB_TOKEN"`
	Path         string `toml:"path" yaml:"path" comment:"Document path inside the repository, empty derives it from output.path"`
}

func defaultFileConfig() fileConfig {
	d := domain.DefaultConfig()
	return fileConfig{
		LLM: fileLLM{
			Provider:          d.LLM.Provider.String(),
			Temperature:       d.LLM.Temperature,
			TopP:              d.LLM.TopP,
			Timeout:           d.LLM.Timeout.String(),
			MaxAttempts:       d.LLM.MaxAttempts,
			BackoffUnit:       d.LLM.BackoffUnit.String(),
			RequestsPerSecond: d.LLM.RequestsPerSecond,
			Burst:             d.LLM.Burst,
		},
		Chunking: fileChunking{
			Encoding:  d.Chunking.Encoding,
			MaxTokens: d.Chunking.MaxTokens,
		},
		Pipeline: filePipeline{
			Concurrency: d.Pipeline.Concurrency,
			Timeout:     d.Pipeline.Timeout.String(),
		},
		Source: fileSource{
			Root:       d.Source.Root,
			Extensions: d.Source.Extensions,
			SkipHidden: d.Source.SkipHidden,
		},
		Output: fileOutput{Path: d.Output.Path},
		Cache: fileCache{
			Backend: string(d.Cache.Backend),
			TTL:     d.Cache.TTL.String(),
		},
		Lock: fileLock{
			Backend: string(d.Lock.Backend),
			TTL:     d.Lock.TTL.String(),
		},
		Publish: filePublish{
			BaseBranch:   d.Publish.BaseBranch,
			BranchPrefix: d.Publish.BranchPrefix,
		},
	}
}

func (fc *fileConfig) toDomain() (*domain.Config, error) {
	provider := domain.AIProvider(strings.ToLower(fc.LLM.Provider))
	model := fc.LLM.Model
	if model == "" {
		model = provider.DefaultModel()
	}

	durations := []struct {
		field string
		value string
	}{
		{field: "llm.timeout", value: fc.LLM.Timeout},
		{field: "llm.backoff_unit", value: fc.LLM.BackoffUnit},
		{field: "pipeline.timeout", value: fc.Pipeline.Timeout},
		{field: "cache.ttl", value: fc.Cache.TTL},
		{field: "lock.ttl", value: fc.Lock.TTL},
	}
	parsed := make([]time.Duration, len(durations))
	for i, d := range durations {
		v, err := time.ParseDuration(d.value)
		if err != nil {
			return nil, domain.ConfigError(d.field, "%q is not a duration", d.value)
		}
		parsed[i] = v
	}

	return &domain.Config{
		LLM: domain.LLMSettings{
			Provider:          provider,
			BaseURL:           fc.LLM.BaseURL,
			Model:             model,
			APIKey:            fc.LLM.APIKey,
			Temperature:       fc.LLM.Temperature,
			TopP:              fc.LLM.TopP,
			Timeout:           parsed[0],
			MaxAttempts:       fc.LLM.MaxAttempts,
			BackoffUnit:       parsed[1],
			RequestsPerSecond: fc.LLM.RequestsPerSecond,
			Burst:             fc.LLM.Burst,
		},
		Chunking: domain.ChunkingSettings{
			Encoding:  fc.Chunking.Encoding,
			MaxTokens: fc.Chunking.MaxTokens,
		},
		Pipeline: domain.PipelineSettings{
			Concurrency: fc.Pipeline.Concurrency,
			Timeout:     parsed[2],
		},
		Source: domain.SourceSettings{
			Root:       fc.Source.Root,
			Extensions: fc.Source.Extensions,
			SkipHidden: fc.Source.SkipHidden,
		},
		Output:  domain.OutputSettings{Path: fc.Output.Path},
		Prompts: domain.PromptSettings{Dir: fc.Prompts.Dir},
		Cache: domain.CacheSettings{
			Backend:   domain.CacheBackend(fc.Cache.Backend),
			SQLiteDir: fc.Cache.SQLiteDir,
			RedisAddr: fc.Cache.RedisAddr,
			TTL:       parsed[3],
		},
		Lock: domain.LockSettings{
			Backend:   domain.LockBackend(fc.Lock.Backend),
			RedisAddr: fc.Lock.RedisAddr,
			TTL:       parsed[4],
		},
		Publish: domain.PublishSettings{
			Enabled:      fc.Publish.Enabled,
			Owner:        fc.Publish.Owner,
			Repo:         fc.Publish.Repo,
			BaseBranch:   fc.Publish.BaseBranch,
			BranchPrefix: fc.Publish.BranchPrefix,
			Token:        fc.Publish.Token,
			Path:         fc.Publish.Path,
		},
	}, nil
}

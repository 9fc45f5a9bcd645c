package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/faqgen/internal/adapters/driven/ai"
	"github.com/custodia-labs/faqgen/internal/adapters/driven/config/file"
	redisadapter "github.com/custodia-labs/faqgen/internal/adapters/driven/redis"
	fsstore "github.com/custodia-labs/faqgen/internal/adapters/driven/storage/filesystem"
	"github.com/custodia-labs/faqgen/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/faqgen/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/faqgen/internal/adapters/driven/tokenizer"
	fsconnector "github.com/custodia-labs/faqgen/internal/connectors/filesystem"
	ghconnector "github.com/custodia-labs/faqgen/internal/connectors/github"
	"github.com/custodia-labs/faqgen/internal/core/domain"
	"github.com/custodia-labs/faqgen/internal/core/ports/driven"
	"github.com/custodia-labs/faqgen/internal/core/ports/driving"
	"github.com/custodia-labs/faqgen/internal/core/services"
	"github.com/custodia-labs/faqgen/internal/logger"
	"github.com/custodia-labs/faqgen/internal/postprocessors/chunker"
)

// runtime holds the services a command needs, built from one Config.
type runtime struct {
	Generator driving.FAQGenerator
	Tokens    driving.TokenCounter
	Watcher   driven.SourceWatcher

	closers []func() error
}

// Close releases every resource in reverse order of acquisition.
func (r *runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *runtime) onClose(fn func() error) {
	r.closers = append(r.closers, fn)
}

// runtimeOptions vary per command.
type runtimeOptions struct {
	// progress receives summarisation progress. Nil disables reporting.
	progress driven.ProgressReporter

	// dryRun keeps the document in memory and never publishes.
	dryRun bool
}

// Factories used by the commands; tests replace them.
var (
	loadConfig      = loadConfigFile
	newRuntime      = buildRuntime
	newTokenCounter = buildTokenCounter
)

// configFile returns the config path from --config or the default.
func configFile() string {
	if configPath != "" {
		return configPath
	}
	return file.DefaultConfigFile
}

// loadConfigFile loads defaults, the config file and the environment.
// An explicit --config must exist.
func loadConfigFile() (*domain.Config, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
	}
	return file.NewConfigStore(configFile()).Load()
}

// addPipelineFlags registers the flags that override pipeline settings.
func addPipelineFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringP("output", "o", "", "FAQ document path (default FAQ.md)")
	flags.String("provider", "", "completion provider: mistral, openai, anthropic or ollama")
	flags.StringP("model", "m", "", "model name")
	flags.Int("concurrency", 0, "maximum in-flight summarisation calls (0 = unbounded)")
	flags.Int("max-tokens", 0, "maximum tokens per chunk")
	flags.Bool("publish", false, "open a pull request when the document changes")
}

// resolveConfig loads the configuration and applies the command's flags
// and optional path argument on top.
//
//nolint:gocyclo // Flat list of independent flag overrides
func resolveConfig(cmd *cobra.Command, args []string) (*domain.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.Source.Root = fsconnector.ResolveRoot(args[0])
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output.Path, _ = flags.GetString("output")
	}
	if flags.Changed("provider") {
		provider, _ := flags.GetString("provider")
		cfg.LLM.Provider = domain.AIProvider(provider)
		if !flags.Changed("model") {
			cfg.LLM.Model = cfg.LLM.Provider.DefaultModel()
		}
	}
	if flags.Changed("model") {
		cfg.LLM.Model, _ = flags.GetString("model")
	}
	if flags.Changed("concurrency") {
		cfg.Pipeline.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("max-tokens") {
		cfg.Chunking.MaxTokens, _ = flags.GetInt("max-tokens")
	}
	if flags.Changed("publish") {
		cfg.Publish.Enabled, _ = flags.GetBool("publish")
	}
	return cfg, nil
}

// buildRuntime wires the full pipeline from cfg.
//
//nolint:gocyclo // Composition root with necessary sequential steps
func buildRuntime(ctx context.Context, cfg *domain.Config, opts runtimeOptions) (rt *runtime, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rt = &runtime{}
	defer func() {
		if err != nil {
			if closeErr := rt.Close(); closeErr != nil {
				logger.Warn("release resources: %v", closeErr)
			}
			rt = nil
		}
	}()

	// 1. Tokenizer and chunker
	tok, err := tokenizer.New(cfg.Chunking.Encoding)
	if err != nil {
		return nil, err
	}
	ch, err := chunker.New(tok, chunker.WithMaxTokens(cfg.Chunking.MaxTokens))
	if err != nil {
		return nil, err
	}

	// 2. Completion API behind the retry policy
	client, err := ai.CreateCompletionClient(&cfg.LLM)
	if err != nil {
		return nil, err
	}
	prompts := file.NewPromptStore(cfg.Prompts.Dir)
	system, err := prompts.Load(driven.PromptSystem)
	if err != nil {
		return nil, err
	}
	completer := services.NewResilientClient(client, system, cfg.LLM)

	// 3. Summariser with optional cache and progress
	summarizerOpts := []services.SummarizerOption{services.WithConcurrency(cfg.Pipeline.Concurrency)}
	cache, err := openSummaryCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		rt.onClose(cache.Close)
		summarizerOpts = append(summarizerOpts, services.WithSummaryCache(cache))
	}
	if opts.progress != nil {
		summarizerOpts = append(summarizerOpts, services.WithProgress(opts.progress))
	}
	summarizer := services.NewSummarizer(completer, prompts, summarizerOpts...)
	synthesizer := services.NewSynthesizer(completer, prompts, tok)

	// 4. Source and document store
	source := fsconnector.NewFromSettings(cfg.Source)
	rt.onClose(source.Close)

	store, err := openDocumentStore(ctx, cfg.Output.Path, opts.dryRun)
	if err != nil {
		return nil, err
	}

	// 5. Optional run lock and publisher
	genOpts := []services.GeneratorOption{services.WithRunTimeout(cfg.Pipeline.Timeout)}
	if cfg.Lock.Backend == domain.LockRedis {
		redisClient, err := redisadapter.Connect(ctx, cfg.Lock.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("run lock: %w", err)
		}
		rt.onClose(redisClient.Close)
		genOpts = append(genOpts, services.WithRunLock(redisadapter.NewLock(redisClient), cfg.Lock.TTL))
	}
	if cfg.Publish.Enabled && !opts.dryRun {
		publisher, err := ghconnector.NewPublisher(ctx, cfg.Publish)
		if err != nil {
			return nil, err
		}
		genOpts = append(genOpts, services.WithPublisher(publisher))
		if cfg.Publish.Path != "" {
			genOpts = append(genOpts, services.WithPublishPath(cfg.Publish.Path))
		}
	}

	rt.Generator = services.NewGenerator(source, tok, ch, summarizer, synthesizer, store, genOpts...)
	rt.Tokens = services.NewTokenCounter(source, tok, ch)
	rt.Watcher = source
	return rt, nil
}

// buildTokenCounter wires only what token counting needs, so it works
// without credentials.
func buildTokenCounter(cfg *domain.Config) (driving.TokenCounter, error) {
	tok, err := tokenizer.New(cfg.Chunking.Encoding)
	if err != nil {
		return nil, err
	}
	ch, err := chunker.New(tok, chunker.WithMaxTokens(cfg.Chunking.MaxTokens))
	if err != nil {
		return nil, err
	}
	return services.NewTokenCounter(fsconnector.NewFromSettings(cfg.Source), tok, ch), nil
}

// openSummaryCache returns nil when caching is disabled.
func openSummaryCache(ctx context.Context, s domain.CacheSettings) (driven.SummaryCache, error) {
	switch s.Backend {
	case domain.CacheMemory:
		return memory.NewSummaryCache(), nil
	case domain.CacheSQLite:
		store, err := sqlite.NewStore(s.SQLiteDir, sqlite.WithTTL(s.TTL))
		if err != nil {
			return nil, fmt.Errorf("summary cache: %w", err)
		}
		logger.Debug("Summary cache at %s", store.Path())
		return store, nil
	case domain.CacheRedis:
		cache, err := redisadapter.OpenSummaryCache(ctx, s.RedisAddr, s.TTL)
		if err != nil {
			return nil, fmt.Errorf("summary cache: %w", err)
		}
		return cache, nil
	default:
		return nil, nil
	}
}

// openDocumentStore returns the on-disk store, or for a dry run an
// in-memory copy of the current document.
func openDocumentStore(ctx context.Context, path string, dryRun bool) (driven.DocumentStore, error) {
	disk := fsstore.NewDocumentStore(path)
	if !dryRun {
		return disk, nil
	}
	snap, err := disk.Read(ctx)
	if err != nil {
		return nil, err
	}
	if !snap.Exists {
		return memory.NewDocumentStore(path), nil
	}
	return memory.NewDocumentStoreWith(path, snap.Content), nil
}

// closeRuntime logs rather than returns close errors; the command result
// has already been decided.
func closeRuntime(rt *runtime) {
	if err := rt.Close(); err != nil {
		logger.Warn("release resources: %v", err)
	}
}

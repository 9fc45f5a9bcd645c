package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/faqgen/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/faqgen/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/faqgen/internal/core/domain"
)

// localConfig returns a configuration that needs no credentials.
func localConfig(t *testing.T) *domain.Config {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.py"), []byte("print('hi')\n"), 0600))

	cfg := domain.DefaultConfig()
	cfg.LLM.Provider = domain.AIProviderOllama
	cfg.LLM.Model = domain.AIProviderOllama.DefaultModel()
	cfg.Source.Root = root
	cfg.Output.Path = filepath.Join(t.TempDir(), "FAQ.md")
	return &cfg
}

func TestBuildRuntime_ValidatesConfig(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.LLM.APIKey = ""

	rt, err := buildRuntime(context.Background(), &cfg, runtimeOptions{})

	assert.Nil(t, rt)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
}

func TestBuildRuntime_Local(t *testing.T) {
	cfg := localConfig(t)

	rt, err := buildRuntime(context.Background(), cfg, runtimeOptions{})
	require.NoError(t, err)

	assert.NotNil(t, rt.Generator)
	assert.NotNil(t, rt.Tokens)
	assert.NotNil(t, rt.Watcher)
	assert.NoError(t, rt.Close())
}

func TestBuildRuntime_CountsTokens(t *testing.T) {
	cfg := localConfig(t)

	rt, err := buildRuntime(context.Background(), cfg, runtimeOptions{})
	require.NoError(t, err)
	defer closeRuntime(rt)

	stats, err := rt.Tokens.CountTokens(context.Background())

	require.NoError(t, err)
	assert.Positive(t, stats.Tokens)
	assert.Equal(t, 1, stats.Chunks)
}

func TestBuildRuntime_RedisLockAndCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := localConfig(t)
	cfg.Lock.Backend = domain.LockRedis
	cfg.Lock.RedisAddr = mr.Addr()
	cfg.Cache.Backend = domain.CacheRedis
	cfg.Cache.RedisAddr = mr.Addr()

	rt, err := buildRuntime(context.Background(), cfg, runtimeOptions{})
	require.NoError(t, err)

	assert.Len(t, rt.closers, 3, "cache, source and lock client")
	assert.NoError(t, rt.Close())
}

func TestBuildRuntime_RedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := localConfig(t)
	cfg.Lock.Backend = domain.LockRedis
	cfg.Lock.RedisAddr = addr

	rt, err := buildRuntime(context.Background(), cfg, runtimeOptions{})

	assert.Nil(t, rt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run lock")
}

func TestOpenSummaryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("none", func(t *testing.T) {
		cache, err := openSummaryCache(ctx, domain.CacheSettings{Backend: domain.CacheNone})
		require.NoError(t, err)
		assert.Nil(t, cache)
	})

	t.Run("memory", func(t *testing.T) {
		cache, err := openSummaryCache(ctx, domain.CacheSettings{Backend: domain.CacheMemory})
		require.NoError(t, err)
		assert.IsType(t, &memory.SummaryCache{}, cache)
	})

	t.Run("sqlite", func(t *testing.T) {
		cache, err := openSummaryCache(ctx, domain.CacheSettings{
			Backend:   domain.CacheSQLite,
			SQLiteDir: t.TempDir(),
			TTL:       domain.DefaultCacheTTL,
		})
		require.NoError(t, err)
		defer cache.Close()
		assert.IsType(t, &sqlite.Store{}, cache)
	})
}

func TestOpenDocumentStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "FAQ.md")
	require.NoError(t, os.WriteFile(path, []byte("# Existing\n"), 0600))

	t.Run("dry run never touches disk", func(t *testing.T) {
		store, err := openDocumentStore(ctx, path, true)
		require.NoError(t, err)

		snap, err := store.Read(ctx)
		require.NoError(t, err)
		assert.True(t, snap.Exists)
		assert.Equal(t, "# Existing\n", snap.Content)

		require.NoError(t, store.Write(ctx, "# Changed\n"))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "# Existing\n", string(data))
	})

	t.Run("dry run of an absent document", func(t *testing.T) {
		store, err := openDocumentStore(ctx, filepath.Join(t.TempDir(), "NEW.md"), true)
		require.NoError(t, err)

		snap, err := store.Read(ctx)
		require.NoError(t, err)
		assert.False(t, snap.Exists)
	})

	t.Run("real store writes to disk", func(t *testing.T) {
		store, err := openDocumentStore(ctx, path, false)
		require.NoError(t, err)

		require.NoError(t, store.Write(ctx, "# Written\n"))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "# Written\n", string(data))
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Run("explicit missing file is an error", func(t *testing.T) {
		old := configPath
		configPath = filepath.Join(t.TempDir(), "missing.toml")
		defer func() { configPath = old }()

		_, err := loadConfigFile()

		assert.Error(t, err)
	})

	t.Run("explicit file is loaded", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "faqgen.toml")
		require.NoError(t, os.WriteFile(path, []byte("[output]\npath = \"docs/FAQ.md\"\n"), 0600))
		old := configPath
		configPath = path
		defer func() { configPath = old }()

		cfg, err := loadConfigFile()

		require.NoError(t, err)
		assert.Equal(t, "docs/FAQ.md", cfg.Output.Path)
	})
}

func TestRuntime_CloseJoinsErrors(t *testing.T) {
	var order []int
	rt := &runtime{}
	rt.onClose(func() error { order = append(order, 1); return nil })
	rt.onClose(func() error { order = append(order, 2); return assert.AnError })

	err := rt.Close()

	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, []int{2, 1}, order, "closed in reverse order")
}

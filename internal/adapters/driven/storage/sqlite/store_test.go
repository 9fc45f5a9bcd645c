package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/faqgen/internal/core/ports/driven"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir(), opts...)
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})

	return store
}

func TestStore_ImplementsInterface(t *testing.T) {
	var _ driven.SummaryCache = (*Store)(nil)
}

func TestNewStore_Path(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "cache.db"), store.Path())
}

func TestStore_GetMiss(t *testing.T) {
	store := setupTestStore(t)

	summary, ok, err := store.Get(context.Background(), "missing")

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, summary)
}

func TestStore_PutAndGet(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	require.NoError(t, store.Put(ctx, "k1", "Users can export reports."))

	summary, ok, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Users can export reports.", summary)
}

func TestStore_PutReplaces(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	require.NoError(t, store.Put(ctx, "k1", "old"))
	require.NoError(t, store.Put(ctx, "k1", "new"))

	summary, ok, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "new", summary)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	store := setupTestStore(t, WithTTL(time.Hour), WithClock(clock))

	require.NoError(t, store.Put(ctx, "k1", "summary"))

	now = now.Add(30 * time.Minute)
	_, ok, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(time.Hour)
	_, ok, err = store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "k1", "persisted"))
	require.NoError(t, store.Close())

	// Migrations must not re-run against an existing database
	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	summary, ok, err := reopened.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "persisted", summary)
}

func TestStore_ConcurrentPut(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Put(ctx, fmt.Sprintf("k%d", i), "s"))
		}(i)
	}
	wg.Wait()

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
}

func TestStore_CanceledContext(t *testing.T) {
	store := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := store.Get(ctx, "k1")
	assert.Error(t, err)
}

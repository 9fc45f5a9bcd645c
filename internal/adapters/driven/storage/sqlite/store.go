package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/faqgen/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/faqgen/internal/core/ports/driven"
)

// DefaultDataDir is used when no directory is configured.
const DefaultDataDir = ".faqgen"

// Ensure Store implements the interface.
var _ driven.SummaryCache = (*Store)(nil)

// Store is a SQLite-backed summary cache.
type Store struct {
	db   *sql.DB
	path string
	ttl  time.Duration
	now  func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithTTL expires entries older than ttl. Zero keeps entries forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to .faqgen/cache.db.
func NewStore(dataDir string, opts ...Option) (*Store, error) {
	if dataDir == "" {
		dataDir = DefaultDataDir
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "cache.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns a cached summary. Expired entries count as misses and are removed.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		summary   string
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT summary, created_at FROM summaries WHERE key = ?", key,
	).Scan(&summary, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading summary: %w", err)
	}

	if s.ttl > 0 && s.now().Sub(time.Unix(createdAt, 0)) > s.ttl {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM summaries WHERE key = ?", key); err != nil {
			return "", false, fmt.Errorf("expiring summary: %w", err)
		}
		return "", false, nil
	}
	return summary, true, nil
}

// Put stores or replaces a summary.
func (s *Store) Put(ctx context.Context, key, summary string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO summaries (key, summary, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			summary = excluded.summary,
			created_at = excluded.created_at
	`, key, summary, s.now().Unix())
	if err != nil {
		return fmt.Errorf("saving summary: %w", err)
	}
	return nil
}

// Count returns the number of stored summaries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM summaries").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting summaries: %w", err)
	}
	return n, nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_summaries.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/faqgen/internal/core/domain"
	"github.com/custodia-labs/faqgen/internal/core/ports/driving"
	"github.com/custodia-labs/faqgen/internal/logger"
)

// mockGenerator implements driving.FAQGenerator for testing.
type mockGenerator struct {
	mu      sync.Mutex
	reports []*domain.RunReport
	errs    []error
	runs    int
}

func (m *mockGenerator) Run(_ context.Context) (*domain.RunReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.runs
	m.runs++
	var report *domain.RunReport
	var err error
	if i < len(m.reports) {
		report = m.reports[i]
	} else if len(m.reports) > 0 {
		report = m.reports[len(m.reports)-1]
	}
	if i < len(m.errs) {
		err = m.errs[i]
	}
	return report, err
}

func (m *mockGenerator) Document(_ context.Context) (domain.Snapshot, error) {
	return domain.Snapshot{Path: "FAQ.md"}, nil
}

func (m *mockGenerator) runCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs
}

// mockTokenCounter implements driving.TokenCounter for testing.
type mockTokenCounter struct {
	stats *driving.TokenStats
	err   error
}

func (m *mockTokenCounter) CountTokens(_ context.Context) (*driving.TokenStats, error) {
	return m.stats, m.err
}

// mockWatcher implements driven.SourceWatcher with a fixed list of batches.
type mockWatcher struct {
	batches [][]string
	err     error
}

func (m *mockWatcher) Watch(_ context.Context) (<-chan []string, error) {
	if m.err != nil {
		return nil, m.err
	}
	ch := make(chan []string, len(m.batches))
	for _, b := range m.batches {
		ch <- b
	}
	close(ch)
	return ch, nil
}

// runtimeRecorder captures what a command asked the runtime factory for.
type runtimeRecorder struct {
	cfg    *domain.Config
	opts   runtimeOptions
	closed bool
}

// setupRuntime swaps the config loader and runtime factory for fakes.
func setupRuntime(t *testing.T, rt *runtime, buildErr error) *runtimeRecorder {
	t.Helper()
	rec := &runtimeRecorder{}

	oldLoad, oldNew := loadConfig, newRuntime
	loadConfig = func() (*domain.Config, error) {
		cfg := domain.DefaultConfig()
		return &cfg, nil
	}
	newRuntime = func(_ context.Context, cfg *domain.Config, opts runtimeOptions) (*runtime, error) {
		rec.cfg = cfg
		rec.opts = opts
		if buildErr != nil {
			return nil, buildErr
		}
		rt.onClose(func() error {
			rec.closed = true
			return nil
		})
		return rt, nil
	}
	t.Cleanup(func() {
		loadConfig, newRuntime = oldLoad, oldNew
	})
	return rec
}

// executeCommand runs the root command with args and returns its output.
// Log lines are captured separately and returned as the second value.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	out := new(bytes.Buffer)
	logs := new(bytes.Buffer)
	oldLog := logger.Output()
	logger.SetOutput(logs)

	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		resetFlags(rootCmd)
		logger.SetOutput(oldLog)
		logger.SetVerbose(false)
		logger.SetQuiet(false)
	})

	err := rootCmd.Execute()
	return out.String(), logs.String(), err
}

// resetFlags restores every flag to its default so tests do not leak
// values into each other through the shared command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

package mcp

import (
	"context"

	"github.com/custodia-labs/faqgen/internal/core/domain"
	"github.com/custodia-labs/faqgen/internal/core/ports/driving"
)

// mockGenerator is a mock implementation of driving.FAQGenerator.
type mockGenerator struct {
	report   *domain.RunReport
	snapshot domain.Snapshot
	runErr   error
	docErr   error
	runs     int
}

func (m *mockGenerator) Run(_ context.Context) (*domain.RunReport, error) {
	m.runs++
	return m.report, m.runErr
}

func (m *mockGenerator) Document(_ context.Context) (domain.Snapshot, error) {
	return m.snapshot, m.docErr
}

// mockTokenCounter is a mock implementation of driving.TokenCounter.
type mockTokenCounter struct {
	stats *driving.TokenStats
	err   error
}

func (m *mockTokenCounter) CountTokens(_ context.Context) (*driving.TokenStats, error) {
	return m.stats, m.err
}

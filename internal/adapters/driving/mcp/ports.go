package mcp

import (
	"github.com/custodia-labs/faqgen/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Generator runs the pipeline and exposes the current document.
	Generator driving.FAQGenerator

	// Tokens reports source size. Optional.
	Tokens driving.TokenCounter
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Generator == nil {
		return ErrMissingGenerator
	}
	return nil
}

// Package mcp provides an MCP (Model Context Protocol) server adapter for faqgen.
// It lets AI assistants regenerate the FAQ and read the current document.
package mcp

import "errors"

// ErrMissingGenerator is returned when the generator is not provided.
var ErrMissingGenerator = errors.New("mcp: generator is required")

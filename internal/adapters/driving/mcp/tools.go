package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// GenerateInput is the input schema for the generate_faq tool.
type GenerateInput struct{}

// GenerateOutput is the output schema for the generate_faq tool.
type GenerateOutput struct {
	RunID      string `json:"run_id"`
	Decision   string `json:"decision"`
	Summary    string `json:"summary"`
	Path       string `json:"path"`
	Chunks     int    `json:"chunks"`
	Diff       string `json:"diff,omitempty"`
	PublishURL string `json:"publish_url,omitempty"`
}

// TokensInput is the input schema for the count_tokens tool.
type TokensInput struct{}

// TokensOutput is the output schema for the count_tokens tool.
type TokensOutput struct {
	Encoding  string `json:"encoding"`
	Tokens    int    `json:"tokens"`
	Chunks    int    `json:"chunks"`
	MaxTokens int    `json:"max_tokens"`
}

// errTokensUnavailable is returned when no token counter was wired.
var errTokensUnavailable = errors.New("token counting is not available")

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_faq",
		Description: "Summarise the codebase and update the FAQ document if it changed",
	}, s.handleGenerate)

	if s.ports.Tokens != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "count_tokens",
			Description: "Report the token and chunk counts of the codebase without calling the model",
		}, s.handleCountTokens)
	}
}

// handleGenerate runs the pipeline once.
func (s *Server) handleGenerate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ GenerateInput,
) (*mcp.CallToolResult, GenerateOutput, error) {
	report, err := s.ports.Generator.Run(ctx)
	if err != nil {
		return nil, GenerateOutput{}, err
	}

	snap, err := s.ports.Generator.Document(ctx)
	if err != nil {
		return nil, GenerateOutput{}, err
	}

	return nil, GenerateOutput{
		RunID:      report.RunID,
		Decision:   report.Result.Decision.String(),
		Summary:    report.Result.Decision.Description(),
		Path:       snap.Path,
		Chunks:     report.Chunks,
		Diff:       report.Result.Diff,
		PublishURL: report.PublishURL,
	}, nil
}

// handleCountTokens reports source size.
func (s *Server) handleCountTokens(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ TokensInput,
) (*mcp.CallToolResult, TokensOutput, error) {
	if s.ports.Tokens == nil {
		return nil, TokensOutput{}, errTokensUnavailable
	}

	stats, err := s.ports.Tokens.CountTokens(ctx)
	if err != nil {
		return nil, TokensOutput{}, err
	}

	return nil, TokensOutput{
		Encoding:  stats.Encoding,
		Tokens:    stats.Tokens,
		Chunks:    stats.Chunks,
		MaxTokens: stats.MaxTokens,
	}, nil
}

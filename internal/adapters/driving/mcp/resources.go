package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for faqgen resources.
	uriScheme = "faq://"

	// documentURI addresses the current FAQ document.
	documentURI = uriScheme + "document"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         documentURI,
		Name:        "document",
		Description: "Current content of the generated FAQ document",
		MIMEType:    "text/markdown",
	}, s.handleDocumentResource)
}

// handleDocumentResource returns the current document. An absent document
// is reported as not found rather than as empty text.
func (s *Server) handleDocumentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if req.Params.URI != documentURI {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	snap, err := s.ports.Generator.Document(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	if !snap.Exists {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     snap.Content,
		}},
	}, nil
}

package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	sessionsURI       = "pagebuilder://sessions"
	documentURIPrefix = "pagebuilder://session/"
	documentURISuffix = "/document"
)

func (s *Server) registerResources() {
	// ── pagebuilder://sessions ─────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		sessionsURI,
		"All Pages",
		mcp.WithResourceDescription("Open and saved pages"),
		mcp.WithMIMEType("application/json"),
	), s.handleSessionsResource)

	// ── pagebuilder://session/{id}/document ────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			documentURIPrefix+"{id}"+documentURISuffix,
			"Page Document",
			mcp.WithTemplateDescription("Ordered blocks of a page"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handleDocumentResource,
	)
}

func (s *Server) handleSessionsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	docs, err := s.editor.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: sessionsURI, MIMEType: "application/json", Text: string(data)},
	}, nil
}

func (s *Server) handleDocumentResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	id := sessionIDFromURI(uri)
	if id == "" {
		return nil, fmt.Errorf("could not extract session id from URI: %s", uri)
	}
	blocks, err := s.editor.Document(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(blocks, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(data)},
	}, nil
}

// sessionIDFromURI extracts id from "pagebuilder://session/{id}/document".
func sessionIDFromURI(uri string) string {
	rest, ok := strings.CutPrefix(uri, documentURIPrefix)
	if !ok {
		return ""
	}
	id, ok := strings.CutSuffix(rest, documentURISuffix)
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}

package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerSessionTools() {
	// ── create_session ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Create a new, empty page and make it the active session"),
		mcp.WithString("name", mcp.Description("Name of the page"), mcp.Required()),
	), s.handleCreateSession)

	// ── list_sessions ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List open and saved pages, most recently edited first"),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleListSessions)

	// ── open_session ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("open_session",
		mcp.WithDescription("Open a saved page and make it the active session"),
		mcp.WithString("sessionId", mcp.Description("Session ID"), mcp.Required()),
	), s.handleOpenSession)

	// ── close_session ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("close_session",
		mcp.WithDescription("Save a page and release it from memory"),
		mcp.WithString("sessionId", mcp.Description("Session ID (optional, defaults to active session)")),
	), s.handleCloseSession)

	// ── delete_session (destructive) ───────────────────
	s.mcp.AddTool(mcp.NewTool("delete_session",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete a page and its whole history. Requires user approval."),
		mcp.WithString("sessionId", mcp.Description("Session ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteSession)

	// ── get_view ───────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_view",
		mcp.WithDescription("Render a page: ordered blocks with their actions, the options panel, drag indicator and undo/redo state"),
		mcp.WithString("sessionId", mcp.Description("Session ID (optional, defaults to active session)")),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleGetView)

	// ── set_edit_mode ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_edit_mode",
		mcp.WithDescription("Turn editing on or off. With editing off every gesture is ignored."),
		mcp.WithBoolean("enabled", mcp.Description("true to edit, false to preview"), mcp.Required()),
		mcp.WithString("sessionId", mcp.Description("Session ID (optional, defaults to active session)")),
	), s.handleSetEditMode)
}

func (s *Server) handleCreateSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	doc, err := s.editor.CreateSession(ctx, name)
	if err != nil {
		return nil, err
	}
	s.setActiveSession(doc.ID)
	return jsonResult(doc)
}

func (s *Server) handleListSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.editor.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResult(docs)
}

func (s *Server) handleOpenSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("sessionId", "")
	if id == "" {
		return nil, fmt.Errorf("sessionId is required")
	}
	doc, err := s.editor.OpenSession(ctx, id)
	if err != nil {
		return nil, err
	}
	s.setActiveSession(doc.ID)
	return jsonResult(doc)
}

func (s *Server) handleCloseSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveSessionID(req)
	if err != nil {
		return nil, err
	}
	if err := s.editor.CloseSession(ctx, id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.activeSession == id {
		s.activeSession = ""
	}
	s.mu.Unlock()
	return textResult(fmt.Sprintf("Session %s closed", id)), nil
}

func (s *Server) handleDeleteSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("sessionId", "")
	if id == "" {
		return nil, fmt.Errorf("sessionId is required")
	}
	if err := s.approval.Request(ctx, PendingAction{
		Tool:        "delete_session",
		SessionID:   id,
		Description: fmt.Sprintf("Delete page %s and its history", id),
	}); err != nil {
		return textResult("Action rejected by user"), nil
	}
	if err := s.editor.DeleteSession(ctx, id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.activeSession == id {
		s.activeSession = ""
	}
	s.mu.Unlock()
	return textResult(fmt.Sprintf("Session %s deleted", id)), nil
}

func (s *Server) handleGetView(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveSessionID(req)
	if err != nil {
		return nil, err
	}
	v, err := s.editor.View(ctx, id)
	if err != nil {
		return nil, err
	}
	return jsonResult(v)
}

func (s *Server) handleSetEditMode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveSessionID(req)
	if err != nil {
		return nil, err
	}
	return gestureResult(s.editor.SetEditMode(ctx, id, req.GetBool("enabled", true)))
}

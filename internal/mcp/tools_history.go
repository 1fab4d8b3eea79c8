package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerHistoryTools() {
	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the last change. Selection is cleared."),
		mcp.WithString("sessionId", mcp.Description("Session ID (optional, defaults to active session)")),
	), s.handleUndo)

	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the last undone change. Selection is cleared."),
		mcp.WithString("sessionId", mcp.Description("Session ID (optional, defaults to active session)")),
	), s.handleRedo)

	s.mcp.AddTool(mcp.NewTool("history",
		mcp.WithDescription("Show every snapshot in the undo history and the current step"),
		mcp.WithString("sessionId", mcp.Description("Session ID (optional, defaults to active session)")),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleHistory)
}

func (s *Server) handleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveSessionID(req)
	if err != nil {
		return nil, err
	}
	return gestureResult(s.editor.Undo(ctx, id))
}

func (s *Server) handleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveSessionID(req)
	if err != nil {
		return nil, err
	}
	return gestureResult(s.editor.Redo(ctx, id))
}

func (s *Server) handleHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveSessionID(req)
	if err != nil {
		return nil, err
	}
	h, err := s.editor.History(ctx, id)
	if err != nil {
		return nil, err
	}
	return jsonResult(h)
}

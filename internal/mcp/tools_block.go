package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/editor"
)

func (s *Server) registerBlockTools() {
	types := make([]string, 0, 2)
	for _, t := range domain.PaletteTypes() {
		types = append(types, string(t))
	}

	// ── add_block ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_block",
		mcp.WithDescription("Add a new block from the palette. It is placed before beforeId, or at the end of the page when beforeId is omitted."),
		mcp.WithString("type",
			mcp.Description("Block type: "+strings.Join(types, ", ")),
			mcp.Enum(types...),
			mcp.Required(),
		),
		mcp.WithNumber("beforeId", mcp.Description("Insert before this block (optional)")),
		mcp.WithString("sessionId", mcp.Description("Session ID (optional, defaults to active session)")),
	), s.handleAddBlock)

	// ── drop_block ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("drop_block",
		mcp.WithDescription("Drag a block and drop it on another block. Dragged downward it lands after the target, upward before it."),
		mcp.WithNumber("blockId", mcp.Description("Block being dragged"), mcp.Required()),
		mcp.WithNumber("targetId", mcp.Description("Block it is dropped on"), mcp.Required()),
		mcp.WithString("sessionId", mcp.Description("Session ID (optional, defaults to active session)")),
	), s.handleDropBlock)

	// ── delete_block (destructive) ─────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_block",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete a block. Requires user approval. Undo restores it."),
		mcp.WithNumber("blockId", mcp.Description("Block ID to delete"), mcp.Required()),
		mcp.WithString("sessionId", mcp.Description("Session ID (optional, defaults to active session)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteBlock)

	// ── duplicate_block ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("duplicate_block",
		mcp.WithDescription("Copy a block, content included, and place the copy right after it"),
		mcp.WithNumber("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("sessionId", mcp.Description("Session ID (optional, defaults to active session)")),
	), s.handleDuplicateBlock)

	// ── move_block_up / move_block_down ────────────────
	s.mcp.AddTool(mcp.NewTool("move_block_up",
		mcp.WithDescription("Swap a block with the one above it. Does nothing for the first block."),
		mcp.WithNumber("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("sessionId", mcp.Description("Session ID (optional, defaults to active session)")),
	), s.handleMoveBlockUp)

	s.mcp.AddTool(mcp.NewTool("move_block_down",
		mcp.WithDescription("Swap a block with the one below it. Does nothing for the last block."),
		mcp.WithNumber("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("sessionId", mcp.Description("Session ID (optional, defaults to active session)")),
	), s.handleMoveBlockDown)

	// ── select_block / clear_selection ─────────────────
	s.mcp.AddTool(mcp.NewTool("select_block",
		mcp.WithDescription("Select a block and show its fields in the options panel"),
		mcp.WithNumber("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("sessionId", mcp.Description("Session ID (optional, defaults to active session)")),
	), s.handleSelectBlock)

	s.mcp.AddTool(mcp.NewTool("clear_selection",
		mcp.WithDescription("Deselect, as a click outside any block does"),
		mcp.WithString("sessionId", mcp.Description("Session ID (optional, defaults to active session)")),
	), s.handleClearSelection)

	// ── edit_field ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("edit_field",
		mcp.WithDescription("Set a field of a block. Text blocks have content; banners have headline and subheadline. Without blockId the selected block is edited."),
		mcp.WithString("field", mcp.Description("Field name"), mcp.Required()),
		mcp.WithString("value", mcp.Description("New value"), mcp.Required()),
		mcp.WithNumber("blockId", mcp.Description("Block ID (optional, defaults to the selected block)")),
		mcp.WithString("sessionId", mcp.Description("Session ID (optional, defaults to active session)")),
	), s.handleEditField)
}

func boolPtr(v bool) *bool { return &v }

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleAddBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveSessionID(req)
	if err != nil {
		return nil, err
	}
	out, err := s.editor.InsertBlock(ctx, id, req.GetString("type", ""), req.GetInt("beforeId", -1))
	return createdResult(out, true, err)
}

// handleDropBlock runs a whole drag gesture under one session lock.
func (s *Server) handleDropBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveSessionID(req)
	if err != nil {
		return nil, err
	}
	blockID, err := blockIDArg(req, "blockId")
	if err != nil {
		return nil, err
	}
	target, err := blockIDArg(req, "targetId")
	if err != nil {
		return nil, err
	}
	return gestureResult(s.editor.Do(ctx, id, func(sess *editor.Session) (bool, int) {
		defer sess.EndDrag()
		if !sess.StartBlockDrag(blockID) {
			return false, 0
		}
		return sess.DropOnBlock(target), 0
	}))
}

func (s *Server) handleDeleteBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveSessionID(req)
	if err != nil {
		return nil, err
	}
	blockID, err := blockIDArg(req, "blockId")
	if err != nil {
		return nil, err
	}
	b, err := s.editor.GetBlock(ctx, id, blockID)
	if err != nil {
		return nil, err
	}
	if err := s.approval.Request(ctx, PendingAction{
		Tool:        "delete_block",
		SessionID:   id,
		Description: fmt.Sprintf("Delete %s block %d", b.Type, b.ID),
		BlockIDs:    []int{b.ID},
	}); err != nil {
		return textResult("Action rejected by user"), nil
	}
	return gestureResult(s.editor.DeleteBlock(ctx, id, blockID))
}

func (s *Server) handleDuplicateBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveSessionID(req)
	if err != nil {
		return nil, err
	}
	blockID, err := blockIDArg(req, "blockId")
	if err != nil {
		return nil, err
	}
	out, err := s.editor.DuplicateBlock(ctx, id, blockID)
	return createdResult(out, true, err)
}

func (s *Server) handleMoveBlockUp(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveSessionID(req)
	if err != nil {
		return nil, err
	}
	blockID, err := blockIDArg(req, "blockId")
	if err != nil {
		return nil, err
	}
	return gestureResult(s.editor.MoveBlockUp(ctx, id, blockID))
}

func (s *Server) handleMoveBlockDown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveSessionID(req)
	if err != nil {
		return nil, err
	}
	blockID, err := blockIDArg(req, "blockId")
	if err != nil {
		return nil, err
	}
	return gestureResult(s.editor.MoveBlockDown(ctx, id, blockID))
}

func (s *Server) handleSelectBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveSessionID(req)
	if err != nil {
		return nil, err
	}
	blockID, err := blockIDArg(req, "blockId")
	if err != nil {
		return nil, err
	}
	return gestureResult(s.editor.SelectBlock(ctx, id, blockID))
}

func (s *Server) handleClearSelection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveSessionID(req)
	if err != nil {
		return nil, err
	}
	return gestureResult(s.editor.ClickOutside(ctx, id))
}

// handleEditField commits the edit right away. Edits the window user has
// not committed yet are recorded first, so each agent edit is its own undo
// step.
func (s *Server) handleEditField(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveSessionID(req)
	if err != nil {
		return nil, err
	}
	field := req.GetString("field", "")
	if field == "" {
		return nil, fmt.Errorf("field is required")
	}
	value := req.GetString("value", "")
	blockID := req.GetInt("blockId", -1)

	return gestureResult(s.editor.Do(ctx, id, func(sess *editor.Session) (bool, int) {
		target := blockID
		if target < 0 {
			selected, ok := sess.Selected()
			if !ok {
				return false, 0
			}
			target = selected
		}
		b, ok := sess.Block(target)
		if !ok || !b.HasField(field) || !sess.EditMode() {
			return false, 0
		}
		sess.CommitEdits()
		if !sess.EditBlockField(target, field, value) {
			return false, 0
		}
		sess.CommitEdits()
		return true, 0
	}))
}

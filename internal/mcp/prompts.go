package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("build_page",
		mcp.WithPromptDescription("Lay out a page from banners and text blocks"),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("What the page is about"),
			mcp.RequiredArgument(),
		),
	), s.handleBuildPagePrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("tidy_page",
		mcp.WithPromptDescription("Review an existing page and reorder or trim its blocks"),
		mcp.WithArgument("sessionId",
			mcp.ArgumentDescription("Session ID of the page"),
			mcp.RequiredArgument(),
		),
	), s.handleTidyPagePrompt)
}

func (s *Server) handleBuildPagePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := req.Params.Arguments["topic"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Build a page about: %s", topic),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Build a page about "%s".

Steps:
1. create_session with a short name for the page.
2. add_block type=banner for the hero, then edit_field headline and subheadline on the returned blockId.
3. add_block type=text for each section and edit_field content on each.
4. Use drop_block, move_block_up or move_block_down to fix the order.
5. Finish with get_view and check the blocks read top to bottom.

Every change can be undone with undo.`, topic),
				},
			},
		},
	}, nil
}

func (s *Server) handleTidyPagePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	id := req.Params.Arguments["sessionId"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Tidy page %s", id),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Tidy the page in session %s.

1. open_session sessionId=%s, then get_view.
2. Delete empty blocks (delete_block asks the user first).
3. Put the banner first and group related text blocks with drop_block.
4. Call history to confirm each change landed as its own step.`, id, id),
				},
			},
		},
	}, nil
}

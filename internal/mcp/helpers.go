package mcpserver

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/service"
)

// blockSummary is the compact block shape returned to agents.
type blockSummary struct {
	ID       int               `json:"id"`
	Type     domain.BlockType  `json:"type"`
	Fields   map[string]string `json:"fields"`
	Selected bool              `json:"selected,omitempty"`
}

// gestureSummary is what mutating tools return.
type gestureSummary struct {
	Changed  bool           `json:"changed"`
	BlockID  *int           `json:"blockId,omitempty"`
	Blocks   []blockSummary `json:"blocks"`
	Selected *int           `json:"selected,omitempty"`
	Step     int            `json:"step"`
	Steps    int            `json:"steps"`
	CanUndo  bool           `json:"canUndo"`
	CanRedo  bool           `json:"canRedo"`
}

func summarize(out *service.Outcome, created bool) gestureSummary {
	v := out.View
	sum := gestureSummary{
		Changed: out.Changed,
		Blocks:  make([]blockSummary, len(v.Blocks)),
		Step:    v.Step,
		Steps:   v.Steps,
		CanUndo: v.CanUndo,
		CanRedo: v.CanRedo,
	}
	if created && out.Changed {
		id := out.BlockID
		sum.BlockID = &id
	}
	for i, b := range v.Blocks {
		sum.Blocks[i] = blockSummary{ID: b.ID, Type: b.Type, Fields: b.Fields, Selected: b.Selected}
		if b.Selected {
			id := b.ID
			sum.Selected = &id
		}
	}
	return sum
}

func gestureResult(out *service.Outcome, err error) (*mcp.CallToolResult, error) {
	return createdResult(out, false, err)
}

func createdResult(out *service.Outcome, created bool, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return nil, err
	}
	return jsonResult(summarize(out, created))
}

// blockIDArg reads a required integer block id. Block ids start at zero, so
// absence is detected with a negative default.
func blockIDArg(req mcp.CallToolRequest, key string) (int, error) {
	id := req.GetInt(key, -1)
	if id < 0 {
		return 0, fmt.Errorf("%s is required", key)
	}
	return id, nil
}

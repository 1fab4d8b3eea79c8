package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"

	"pagebuilder/internal/service"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
	return New(Deps{
		Editor:      service.NewEditorService(nil, nil, 0, logger),
		Logger:      logger,
		AutoApprove: true,
	})
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func decode[T any](t *testing.T, res *mcp.CallToolResult, err error) T {
	t.Helper()
	if err != nil {
		t.Fatalf("tool error: %v", err)
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content %T", res.Content[0])
	}
	var v T
	if err := json.Unmarshal([]byte(text.Text), &v); err != nil {
		t.Fatalf("decode %q: %v", text.Text, err)
	}
	return v
}

func order(sum gestureSummary) []int {
	ids := make([]int, len(sum.Blocks))
	for i, b := range sum.Blocks {
		ids[i] = b.ID
	}
	return ids
}

func TestTools_BuildAndReorder(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	if _, err := s.handleGetView(ctx, call(nil)); err == nil {
		t.Fatal("expected error without an active session")
	}

	res, err := s.handleCreateSession(ctx, call(map[string]any{"name": "Landing"}))
	doc := decode[map[string]any](t, res, err)
	if doc["id"] == "" {
		t.Fatalf("session has no id: %v", doc)
	}

	res, err = s.handleAddBlock(ctx, call(map[string]any{"type": "banner"}))
	banner := decode[gestureSummary](t, res, err)
	if !banner.Changed || banner.BlockID == nil {
		t.Fatalf("add banner = %+v", banner)
	}
	res, err = s.handleAddBlock(ctx, call(map[string]any{"type": "text"}))
	text := decode[gestureSummary](t, res, err)
	// JSON numbers arrive as float64.
	res, err = s.handleAddBlock(ctx, call(map[string]any{"type": "text", "beforeId": float64(*banner.BlockID)}))
	first := decode[gestureSummary](t, res, err)

	want := []int{*first.BlockID, *banner.BlockID, *text.BlockID}
	if got := order(first); !equalInts(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}

	// Dragging the first block down onto the last places it after the last.
	res, err = s.handleDropBlock(ctx, call(map[string]any{"blockId": want[0], "targetId": want[2]}))
	dropped := decode[gestureSummary](t, res, err)
	if got := order(dropped); !equalInts(got, []int{want[1], want[2], want[0]}) {
		t.Fatalf("after drop = %v", got)
	}

	res, err = s.handleMoveBlockUp(ctx, call(map[string]any{"blockId": want[1]}))
	if sum := decode[gestureSummary](t, res, err); sum.Changed {
		t.Error("moving the first block up should not apply")
	}

	res, err = s.handleUndo(ctx, call(nil))
	undone := decode[gestureSummary](t, res, err)
	if got := order(undone); !equalInts(got, want) {
		t.Errorf("after undo = %v, want %v", got, want)
	}
	if !undone.CanRedo {
		t.Error("expected redo to be available")
	}
}

func TestTools_EditFieldIsOneStep(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	_, _ = s.handleCreateSession(ctx, call(map[string]any{"name": "Edit"}))

	res, err := s.handleAddBlock(ctx, call(map[string]any{"type": "banner"}))
	added := decode[gestureSummary](t, res, err)
	id := *added.BlockID

	res, err = s.handleEditField(ctx, call(map[string]any{"field": "headline", "value": "Welcome"}))
	if sum := decode[gestureSummary](t, res, err); sum.Changed {
		t.Fatal("edit without selection or blockId should not apply")
	}

	res, err = s.handleSelectBlock(ctx, call(map[string]any{"blockId": id}))
	if sum := decode[gestureSummary](t, res, err); sum.Selected == nil || *sum.Selected != id {
		t.Fatalf("selection = %+v", sum.Selected)
	}

	res, err = s.handleEditField(ctx, call(map[string]any{"field": "headline", "value": "Welcome"}))
	edited := decode[gestureSummary](t, res, err)
	if edited.Blocks[0].Fields["headline"] != "Welcome" || edited.Step != 2 {
		t.Fatalf("after edit = %+v", edited)
	}

	res, err = s.handleEditField(ctx, call(map[string]any{"blockId": id, "field": "subheadline", "value": "Hi"}))
	if sum := decode[gestureSummary](t, res, err); sum.Step != 3 {
		t.Errorf("inline edit step = %d, want 3", sum.Step)
	}

	res, err = s.handleHistory(ctx, call(nil))
	h := decode[service.HistoryInfo](t, res, err)
	if h.Step != 3 || len(h.Snapshots) != 4 {
		t.Errorf("history step %d of %d", h.Step, len(h.Snapshots))
	}
}

func TestTools_EditFieldKeepsWindowEditSeparate(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	res, err := s.handleCreateSession(ctx, call(map[string]any{"name": "Shared"}))
	doc := decode[map[string]any](t, res, err)
	sessionID := doc["id"].(string)

	res, err = s.handleAddBlock(ctx, call(map[string]any{"type": "banner"}))
	id := *decode[gestureSummary](t, res, err).BlockID

	// The window user types without committing.
	if _, err := s.editor.EditBlockField(ctx, sessionID, id, "headline", "typed"); err != nil {
		t.Fatal(err)
	}

	res, err = s.handleEditField(ctx, call(map[string]any{"blockId": id, "field": "subheadline", "value": "agent"}))
	if sum := decode[gestureSummary](t, res, err); !sum.Changed || sum.Step != 3 {
		t.Fatalf("agent edit = %+v, want step 3", sum)
	}

	res, err = s.handleUndo(ctx, call(nil))
	sum := decode[gestureSummary](t, res, err)
	fields := sum.Blocks[0].Fields
	if fields["subheadline"] != "" || fields["headline"] != "typed" {
		t.Errorf("undo of agent edit left fields %v", fields)
	}

	res, err = s.handleEditField(ctx, call(map[string]any{"blockId": id, "field": "content", "value": "x"}))
	if sum := decode[gestureSummary](t, res, err); sum.Changed {
		t.Error("edit of a field the block lacks should not apply")
	}
}

func TestTools_DeleteNeedsApproval(t *testing.T) {
	ctx := context.Background()
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
	em := &recordingEmitter{}
	s := New(Deps{Editor: service.NewEditorService(nil, nil, 0, logger), Emitter: em, Logger: logger})
	s.approval.SetTimeout(50 * time.Millisecond)

	_, _ = s.handleCreateSession(ctx, call(map[string]any{"name": "Approve"}))
	res, err := s.handleAddBlock(ctx, call(map[string]any{"type": "text"}))
	id := *decode[gestureSummary](t, res, err).BlockID

	// Nobody answers: the request times out and the block survives.
	res, err = s.handleDeleteBlock(ctx, call(map[string]any{"blockId": id}))
	if err != nil {
		t.Fatal(err)
	}
	if text := res.Content[0].(mcp.TextContent).Text; text != "Action rejected by user" {
		t.Fatalf("result = %q", text)
	}
	if len(em.events) == 0 || em.events[0] != eventApprovalRequired {
		t.Fatalf("events = %v", em.events)
	}

	// Approve as soon as the request shows up.
	s.approval.SetTimeout(time.Second)
	go func() {
		for i := 0; i < 100; i++ {
			if ids := s.approval.Pending(); len(ids) > 0 {
				s.Approve(ids[0])
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()
	res, err = s.handleDeleteBlock(ctx, call(map[string]any{"blockId": id}))
	if sum := decode[gestureSummary](t, res, err); !sum.Changed || len(sum.Blocks) != 0 {
		t.Fatalf("after approved delete = %+v", sum)
	}
}

func TestSessionIDFromURI(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"pagebuilder://session/abc-123/document", "abc-123"},
		{"pagebuilder://session//document", ""},
		{"pagebuilder://session/a/b/document", ""},
		{"pagebuilder://sessions", ""},
		{"notes://page/abc/blocks", ""},
	}
	for _, tt := range tests {
		if got := sessionIDFromURI(tt.uri); got != tt.want {
			t.Errorf("sessionIDFromURI(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingEmitter) Emit(_ context.Context, event string, _ any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

package mcpserver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventEmitter lets the approval queue reach the frontend.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

const (
	eventApprovalRequired  = "mcp:approval-required"
	eventApprovalDismissed = "mcp:approval-dismissed"
)

// PendingAction is a destructive tool call waiting for the user.
type PendingAction struct {
	ID          string `json:"id"`
	Tool        string `json:"tool"`
	SessionID   string `json:"sessionId"`
	Description string `json:"description"`
	BlockIDs    []int  `json:"blockIds,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

// ApprovalQueue holds destructive MCP calls until the user approves or
// rejects them in the editor window. Without a window (standalone stdio
// mode) every request is approved.
type ApprovalQueue struct {
	mu      sync.Mutex
	pending map[string]chan bool
	emitter EventEmitter
	timeout time.Duration
	auto    bool
}

// NewApprovalQueue creates a queue. With auto set, Request never blocks.
func NewApprovalQueue(emitter EventEmitter, auto bool) *ApprovalQueue {
	return &ApprovalQueue{
		pending: make(map[string]chan bool),
		emitter: emitter,
		timeout: 120 * time.Second,
		auto:    auto || emitter == nil,
	}
}

// SetTimeout changes how long Request waits for an answer.
func (q *ApprovalQueue) SetTimeout(d time.Duration) { q.timeout = d }

// Request announces action and blocks until it is answered, times out or ctx
// ends. Only an explicit approval returns nil.
func (q *ApprovalQueue) Request(ctx context.Context, action PendingAction) error {
	if q.auto {
		return nil
	}
	action.ID = uuid.New().String()
	action.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	ch := make(chan bool, 1)
	q.mu.Lock()
	q.pending[action.ID] = ch
	q.mu.Unlock()
	defer q.forget(action.ID)

	q.emitter.Emit(ctx, eventApprovalRequired, action)

	timer := time.NewTimer(q.timeout)
	defer timer.Stop()

	select {
	case ok := <-ch:
		if !ok {
			return fmt.Errorf("action rejected by user: %s", action.Tool)
		}
		return nil
	case <-timer.C:
		q.emitter.Emit(ctx, eventApprovalDismissed, map[string]string{"id": action.ID})
		return fmt.Errorf("action timed out after %s: %s", q.timeout, action.Tool)
	case <-ctx.Done():
		q.emitter.Emit(context.Background(), eventApprovalDismissed, map[string]string{"id": action.ID})
		return ctx.Err()
	}
}

// Pending lists the ids of unanswered requests.
func (q *ApprovalQueue) Pending() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	ids := make([]string, 0, len(q.pending))
	for id := range q.pending {
		ids = append(ids, id)
	}
	return ids
}

func (q *ApprovalQueue) Approve(id string) { q.answer(id, true) }

func (q *ApprovalQueue) Reject(id string) { q.answer(id, false) }

func (q *ApprovalQueue) answer(id string, ok bool) {
	q.mu.Lock()
	ch, found := q.pending[id]
	q.mu.Unlock()
	if !found {
		return
	}
	select {
	case ch <- ok:
	default:
	}
}

func (q *ApprovalQueue) forget(id string) {
	q.mu.Lock()
	delete(q.pending, id)
	q.mu.Unlock()
}

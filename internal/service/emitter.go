package service

import (
	"context"
	"sync"
)

// ─────────────────────────────────────────────────────────────
// EventEmitter — how services reach the frontend
// ─────────────────────────────────────────────────────────────

// EventEmitter publishes named events. The window forwards them through the
// Wails runtime; the standalone MCP process has no listener and passes nil.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// MockEmitter records emissions for tests. It is safe for concurrent use.
type MockEmitter struct {
	mu     sync.Mutex
	Events []EmittedEvent
}

// EmittedEvent is one recorded emission.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Named returns the payloads recorded under event, oldest first.
func (m *MockEmitter) Named(event string) []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []any
	for _, e := range m.Events {
		if e.Event == event {
			out = append(out, e.Data)
		}
	}
	return out
}

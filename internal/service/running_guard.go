package service

import (
	"context"
	"sync"
)

// JobGuard is exported so _test packages can exercise it directly.
type JobGuard = jobGuard

// ─────────────────────────────────────────────────────────────
// jobGuard — one run per job name at a time
// ─────────────────────────────────────────────────────────────

// jobGuard keeps a scheduled job from overlapping with itself when a run
// outlasts its interval or a manual run races the scheduler.
type jobGuard struct {
	mu     sync.Mutex
	active map[string]bool
	wg     sync.WaitGroup
}

// Acquire marks name as running. It reports false if a run is in progress.
func (g *jobGuard) Acquire(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active == nil {
		g.active = make(map[string]bool)
	}
	if g.active[name] {
		return false
	}
	g.active[name] = true
	g.wg.Add(1)
	return true
}

// Release ends a run started by a successful Acquire.
func (g *jobGuard) Release(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.active[name] {
		return
	}
	delete(g.active, name)
	g.wg.Done()
}

// Running reports whether name is currently held.
func (g *jobGuard) Running(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active[name]
}

// Wait blocks until every active run is released or ctx ends.
func (g *jobGuard) Wait(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

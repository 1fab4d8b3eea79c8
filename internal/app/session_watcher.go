package app

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"pagebuilder/internal/service"
)

// sessionWatcher polls the journal for sessions changed outside this process
// (e.g. by the standalone MCP server) and reloads them so the window follows
// along. Reload events go out through the editor service's emitter.
type sessionWatcher struct {
	editor   *service.EditorService
	interval time.Duration
	logger   *log.Logger

	mu     sync.Mutex
	stopCh chan struct{}
	done   chan struct{}
}

func newSessionWatcher(editor *service.EditorService, interval time.Duration, logger *log.Logger) *sessionWatcher {
	return &sessionWatcher{editor: editor, interval: interval, logger: logger.WithPrefix("watch")}
}

// Start begins the polling loop. It is a no-op if already running.
func (w *sessionWatcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopCh != nil {
		return
	}
	w.stopCh = make(chan struct{})
	w.done = make(chan struct{})
	go w.pollLoop(ctx, w.stopCh, w.done)
}

// Stop ends the loop and waits for it to exit.
func (w *sessionWatcher) Stop() {
	w.mu.Lock()
	stop, done := w.stopCh, w.done
	w.stopCh, w.done = nil, nil
	w.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (w *sessionWatcher) pollLoop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.check(ctx)
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (w *sessionWatcher) check(ctx context.Context) {
	ids, err := w.editor.SyncFromStore(ctx)
	if err != nil {
		w.logger.Warn("poll failed", "err", err)
		return
	}
	if len(ids) > 0 {
		w.logger.Debug("reloaded sessions", "ids", ids)
	}
}

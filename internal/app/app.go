package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/server"
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"pagebuilder/internal/config"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/logging"
	mcpserver "pagebuilder/internal/mcp"
	"pagebuilder/internal/service"
	"pagebuilder/internal/storage"
)

const syncInterval = 2 * time.Second

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
type App struct {
	ctx    context.Context
	logger *log.Logger

	mu  sync.Mutex
	cfg *config.Config

	db      *storage.DB
	editor  *service.EditorService
	pruner  *service.JournalPruner
	watcher *sessionWatcher
	mcp     *mcpserver.Server
	mcpHTTP *server.StreamableHTTPServer
}

// New creates a new App.
func New(cfg *config.Config, logger *log.Logger) *App {
	return &App{cfg: cfg, logger: logger}
}

// wailsEmitter forwards service events to the frontend. Events raised from
// MCP requests carry the request context, so the runtime context is held here.
type wailsEmitter struct {
	ctx context.Context
}

func (e wailsEmitter) Emit(_ context.Context, event string, data any) {
	wailsRuntime.EventsEmit(e.ctx, event, data)
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx = logging.WithLogger(ctx, a.logger)
	if err := a.start(a.ctx, wailsEmitter{ctx: ctx}); err != nil {
		wailsRuntime.LogFatalf(ctx, "Failed to start: %v", err)
	}
}

// start wires storage, services and the optional MCP listener.
func (a *App) start(ctx context.Context, emitter service.EventEmitter) error {
	cfg := a.config()

	var store domain.JournalStore
	if cfg.Editor.Persist {
		db, err := storage.New(cfg.Storage.Path)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		a.db = db
		store = storage.NewJournalStore(db)
	}
	a.editor = service.NewEditorService(store, emitter, cfg.Editor.MaxHistory, a.logger)

	if store != nil {
		age, _ := cfg.Storage.PruneAge()
		a.pruner = service.NewJournalPruner(store, cfg.Storage.PruneMaxSteps, age, a.logger)
		a.pruner.SkipOpen(a.editor.OpenSessions)
		if cfg.Storage.PruneSchedule != "" {
			if err := a.pruner.Start(cfg.Storage.PruneSchedule); err != nil {
				a.logger.Warn("journal pruning disabled", "err", err)
			}
		}
		a.watcher = newSessionWatcher(a.editor, syncInterval, a.logger)
		a.watcher.Start(ctx)
	}

	a.mcp = mcpserver.New(mcpserver.Deps{
		Name:    cfg.MCP.Name,
		Version: cfg.MCP.Version,
		Emitter: emitter,
		Editor:  a.editor,
		Logger:  a.logger,
	})
	if cfg.MCP.Listen != "" {
		a.mcpHTTP = server.NewStreamableHTTPServer(a.mcp.MCP())
		go func() {
			a.logger.Info("serving MCP", "addr", cfg.MCP.Listen)
			if err := a.mcpHTTP.Start(cfg.MCP.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("MCP listener stopped", "err", err)
			}
		}()
	}
	return nil
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	if a.mcpHTTP != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		_ = a.mcpHTTP.Shutdown(shutdownCtx)
		cancel()
	}
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.pruner != nil {
		waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		a.pruner.Stop(waitCtx)
		cancel()
	}
	if a.editor != nil {
		sessions, _ := a.editor.ListSessions(ctx)
		for _, d := range sessions {
			// Only open sessions succeed; persisted-only ones report not found.
			_ = a.editor.CloseSession(ctx, d.ID)
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}

func (a *App) config() *config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// ApplyConfig takes a reloaded configuration. The root logger's level and
// the history cap change in place. Prefixed component loggers, storage and
// MCP settings keep their startup values until restart.
func (a *App) ApplyConfig(cfg *config.Config) {
	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()

	if level, err := logging.ParseLevel(cfg.Log.Level); err == nil {
		a.logger.SetLevel(level)
	}
	if a.editor != nil {
		a.editor.SetMaxHistory(cfg.Editor.MaxHistory)
	}
}

// GetSettings returns the active configuration for the settings panel.
func (a *App) GetSettings() Settings {
	cfg := a.config()
	return Settings{
		MaxHistory: cfg.Editor.MaxHistory,
		Persist:    cfg.Editor.Persist,
		Journal:    cfg.Storage.Path,
		MCPListen:  cfg.MCP.Listen,
	}
}

// PruneJournals runs journal pruning immediately.
func (a *App) PruneJournals() (service.PruneResult, error) {
	if a.pruner == nil {
		return service.PruneResult{Skipped: true}, nil
	}
	return a.pruner.RunOnce(a.ctx)
}

// ApproveAction confirms a destructive MCP call.
func (a *App) ApproveAction(actionID string) { a.mcp.Approve(actionID) }

// RejectAction refuses a destructive MCP call.
func (a *App) RejectAction(actionID string) { a.mcp.Reject(actionID) }

package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"pagebuilder/internal/config"
	"pagebuilder/internal/domain"
	mcpserver "pagebuilder/internal/mcp"
	"pagebuilder/internal/service"
	"pagebuilder/internal/storage"
)

// ServeMCP runs pagebuilder as a standalone MCP server on stdin/stdout with no
// window. Sessions are journaled to the same database the window uses, which
// picks up the changes. There is nobody to confirm destructive tools, so they
// run without approval.
func ServeMCP(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var store domain.JournalStore
	if cfg.Editor.Persist {
		db, err := storage.New(cfg.Storage.Path)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer db.Close()
		store = storage.NewJournalStore(db)
	}

	editorSvc := service.NewEditorService(store, nil, cfg.Editor.MaxHistory, logger)
	srv := mcpserver.New(mcpserver.Deps{
		Name:        cfg.MCP.Name,
		Version:     cfg.MCP.Version,
		Editor:      editorSvc,
		Logger:      logger,
		AutoApprove: true,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ServeStdio() }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
	case <-ctx.Done():
	}

	// Flush every open session before exit.
	sessions, _ := editorSvc.ListSessions(context.Background())
	for _, d := range sessions {
		_ = editorSvc.CloseSession(context.Background(), d.ID)
	}
	return nil
}

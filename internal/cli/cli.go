// Package cli implements the pagebuilder command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"pagebuilder/internal/config"
	"pagebuilder/internal/logging"
)

// CLI holds state shared by all commands.
type CLI struct {
	assets fs.FS
	stderr io.Writer

	configPath string
	verbose    bool

	cfg     *config.Config
	logger  *log.Logger
	logFile *os.File
}

// New creates a CLI. assets is the built frontend served by the gui command.
func New(assets fs.FS, stderr io.Writer) *CLI {
	return &CLI{assets: assets, stderr: stderr}
}

// RootCommand builds the command tree. Running it without a subcommand opens
// the editor window.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          config.AppName,
		Short:        "Block page editor",
		Long:         `pagebuilder assembles pages from text and banner blocks with drag-and-drop, an options panel and undo/redo. Pages can also be edited by AI agents over MCP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.setup(); err != nil {
				return err
			}
			cmd.SetContext(logging.WithLogger(cmd.Context(), c.logger))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			c.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGUI(cmd.Context())
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.newGUICmd())
	root.AddCommand(c.newMCPCmd())
	root.AddCommand(c.newSessionsCmd())
	root.AddCommand(c.newPruneCmd())
	return root
}

// Execute runs the CLI with ctx and returns the first command error.
func (c *CLI) Execute(ctx context.Context, args []string) error {
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetErr(c.stderr)
	return root.ExecuteContext(ctx)
}

// setup loads configuration and builds the logger.
func (c *CLI) setup() error {
	cfg, warnings, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	level, _ := logging.ParseLevel(cfg.Log.Level)
	if c.verbose {
		level = log.DebugLevel
	}

	w := c.stderr
	if cfg.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		c.logFile = f
		w = f
	}
	c.logger = logging.New(w, level)

	for _, msg := range warnings {
		c.logger.Warn(msg)
	}
	return nil
}

func (c *CLI) close() {
	if c.logFile != nil {
		c.logFile.Close()
		c.logFile = nil
	}
}

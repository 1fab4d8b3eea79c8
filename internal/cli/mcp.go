package cli

import (
	"github.com/spf13/cobra"

	"pagebuilder/internal/app"
)

func (c *CLI) newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve MCP on stdin/stdout without a window",
		Long: `Serve the editor's MCP tools on stdin/stdout. Sessions are journaled to the
same database the window uses, so an open window follows the changes. Logs go
to stderr or the configured log file, never stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.ServeMCP(cmd.Context(), c.cfg, c.logger)
		},
	}
}

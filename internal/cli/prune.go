package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"pagebuilder/internal/service"
)

func (c *CLI) newPruneCmd() *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Trim the history of pages idle longer than storage.prune_after",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := c.openJournal()
			if err != nil {
				return err
			}
			defer db.Close()

			age, err := c.cfg.Storage.PruneAge()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("keep") {
				keep = c.cfg.Storage.PruneMaxSteps
			}
			if keep < 1 {
				return fmt.Errorf("--keep must be at least 1")
			}

			res, err := service.NewJournalPruner(store, keep, age, c.logger).RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dropped %d snapshot(s) from pages idle since %s\n",
				res.Dropped, res.Cutoff.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 0, "snapshots to keep per page (default storage.prune_max_steps)")
	return cmd
}

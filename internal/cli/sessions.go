package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/storage"
)

func (c *CLI) openJournal() (*storage.DB, *storage.JournalStore, error) {
	if !c.cfg.Editor.Persist {
		return nil, nil, fmt.Errorf("session journal is disabled (editor.persist = false)")
	}
	db, err := storage.New(c.cfg.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open journal: %w", err)
	}
	return db, storage.NewJournalStore(db), nil
}

func (c *CLI) newSessionsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List saved pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := c.openJournal()
			if err != nil {
				return err
			}
			defer db.Close()

			docs, err := store.ListDocuments()
			if err != nil {
				return err
			}
			if asJSON {
				if docs == nil {
					docs = []domain.Document{}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(docs)
			}
			return printSessions(cmd, docs)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printSessions(cmd *cobra.Command, docs []domain.Document) error {
	if len(docs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no saved pages")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTEP\tUPDATED")
	for _, d := range docs {
		fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%s\n", d.ID, d.Name, d.CurrentStep+1, d.Steps, d.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPruneCmd(a *app) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove picks records no cake refers to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			var ids []string
			if dryRun {
				ids, err = s.Orphans()
			} else {
				ids, err = s.Prune()
			}
			if err != nil {
				return classify(err)
			}
			if a.flags.jsonMode {
				return printJSON(cmd, ids)
			}
			verb := "Removed"
			if dryRun {
				verb = "Would remove"
			}
			for _, id := range ids {
				fmt.Fprintf(cmd.OutOrStdout(), "%s picks of %s\n", verb, id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d orphaned records\n", len(ids))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list orphaned records without deleting them")
	return cmd
}

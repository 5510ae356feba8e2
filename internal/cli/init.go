package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize cake storage",
		Long: "Create the configuration and data directories, open the storage backend,\n" +
			"and create a first cake named for the current year when none exists.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			activeID, created, err := s.Bootstrap()
			if err != nil {
				return classify(err)
			}

			out := cmd.OutOrStdout()
			if a.flags.jsonMode {
				return printJSON(cmd, map[string]any{"activeId": activeID, "created": created})
			}
			if created {
				meta, err := s.Cake(activeID)
				if err != nil {
					return classify(err)
				}
				fmt.Fprintf(out, "Created cake %q (%s)\n", meta.Name, meta.ID)
			}
			fmt.Fprintln(out, "Cake initialized successfully")
			return nil
		},
	}
}

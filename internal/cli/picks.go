package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/cake/pkg/placement"
	"github.com/mesh-intelligence/cake/pkg/types"
)

func newPickCmd(a *app) *cobra.Command {
	var cakeID string
	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Add, list, edit, and remove picks",
	}
	cmd.PersistentFlags().StringVar(&cakeID, "cake", "", "cake id (default: active cake)")

	cmd.AddCommand(&cobra.Command{
		Use:   "add <text>",
		Short: "Plant a new pick",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			meta, err := targetCake(s, cakeID)
			if err != nil {
				return err
			}
			p, err := s.AddPick(meta.ID, args[0], placement.New(nil))
			if err != nil {
				return classify(err)
			}
			if a.flags.jsonMode {
				return printJSON(cmd, p)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added pick %s\n", p.ID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the picks of a cake",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			meta, err := targetCake(s, cakeID)
			if err != nil {
				return err
			}
			picks, err := s.LoadCakePicks(meta.ID)
			if err != nil {
				return classify(err)
			}
			if a.flags.jsonMode {
				return printJSON(cmd, picks)
			}
			printPicks(cmd, picks)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "edit <pick-id> <text>",
		Short: "Change the label of a pick",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			meta, err := targetCake(s, cakeID)
			if err != nil {
				return err
			}
			if err := s.EditPick(meta.ID, args[0], args[1]); err != nil {
				return classify(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated pick %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <pick-id>",
		Aliases: []string{"delete"},
		Short:   "Remove a pick",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			meta, err := targetCake(s, cakeID)
			if err != nil {
				return err
			}
			if err := s.DeletePick(meta.ID, args[0]); err != nil {
				return classify(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed pick %s\n", args[0])
			return nil
		},
	})
	return cmd
}

func printPicks(cmd *cobra.Command, picks []types.Pick) {
	out := cmd.OutOrStdout()
	if len(picks) == 0 {
		fmt.Fprintln(out, "No picks yet")
		return
	}
	for _, p := range picks {
		x, z := placement.Position(p.Angle, p.Radius)
		fmt.Fprintf(out, "%s  %-60s  (x=%.2f, z=%.2f)\n", p.ID, p.Text, x, z)
	}
}

package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/cake/pkg/types"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cakes",
		Long:  "List every saved cake. The active cake is marked with '*'.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			idx, err := s.LoadIndex()
			if err != nil {
				return classify(err)
			}
			active, err := s.GetActiveCakeID()
			if err != nil {
				return classify(err)
			}
			var cakes []types.CakeMeta
			if idx != nil {
				cakes = idx.Cakes
			}

			views := make([]cakeView, 0, len(cakes))
			for _, c := range cakes {
				picks, err := s.LoadCakePicks(c.ID)
				if err != nil {
					return classify(err)
				}
				v := newCakeView(c, active)
				n := len(picks)
				v.Picks = &n
				views = append(views, v)
			}
			if a.flags.jsonMode {
				return printJSON(cmd, views)
			}
			if len(views) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No cakes yet")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
			for _, v := range views {
				mark := " "
				if v.Active {
					mark = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d picks\n", mark, v.ID, v.Name, v.ThemeID, *v.Picks)
			}
			return w.Flush()
		},
	}
}

func newNewCmd(a *app) *cobra.Command {
	var theme string
	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create an empty cake and make it active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if theme == "" {
				theme = a.defaultTheme()
			}
			themeID, err := resolveTheme(theme)
			if err != nil {
				return err
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			created, err := s.CreateNewCake(args[0], nil, themeID)
			if err != nil {
				return classify(err)
			}
			if a.flags.jsonMode {
				return printJSON(cmd, newCakeView(created.Meta, created.ID))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created cake %q (%s)\n", created.Meta.Name, created.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&theme, "theme", "", "theme id (default: default_theme from config)")
	return cmd
}

func newUseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "use <id>",
		Short: "Make a cake active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			meta, err := s.Cake(args[0])
			if err != nil {
				return classify(err)
			}
			if err := s.SetActiveCake(meta.ID); err != nil {
				return classify(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Active cake is now %q (%s)\n", meta.Name, meta.ID)
			return nil
		},
	}
}

func newRenameCmd(a *app) *cobra.Command {
	var cakeID string
	cmd := &cobra.Command{
		Use:   "rename <name>",
		Short: "Rename a cake",
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
			if err := s.UpdateCakeMetaName(meta.ID, args[0]); err != nil {
				return classify(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed cake %s\n", meta.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&cakeID, "cake", "", "cake id (default: active cake)")
	return cmd
}

func newThemeCmd(a *app) *cobra.Command {
	var cakeID string
	cmd := &cobra.Command{
		Use:   "theme [<id>]",
		Short: "Show themes or set a cake's theme",
		Long:  "Without an argument, list the known themes and mark the cake's current one.\nWith a theme id, apply it to the cake.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			meta, err := targetCake(s, cakeID)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				themeID, err := resolveTheme(args[0])
				if err != nil {
					return err
				}
				if err := s.UpdateCakeTheme(meta.ID, themeID); err != nil {
					return classify(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cake %s now uses theme %s\n", meta.ID, themeID)
				return nil
			}

			current, _ := types.ThemeByID(meta.ThemeID)
			if a.flags.jsonMode {
				return printJSON(cmd, map[string]any{"current": current.ID, "themes": types.Themes()})
			}
			for _, t := range types.Themes() {
				mark := " "
				if t.ID == current.ID {
					mark = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-10s %s\n", mark, t.ID, t.Label)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cakeID, "cake", "", "cake id (default: active cake)")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var cakeID string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a cake and its picks",
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
			idx, err := s.DeleteCake(meta.ID)
			if err != nil {
				return classify(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Deleted cake %q (%s)\n", meta.Name, meta.ID)
			if idx == nil || idx.ActiveID == "" {
				fmt.Fprintln(out, "No cakes left")
			} else if idx.ActiveID != meta.ID {
				fmt.Fprintf(out, "Active cake is %s\n", idx.ActiveID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cakeID, "cake", "", "cake id (default: active cake)")
	return cmd
}

func newDuplicateCmd(a *app) *cobra.Command {
	var cakeID, name string
	cmd := &cobra.Command{
		Use:   "duplicate",
		Short: "Copy a cake and its picks into a new active cake",
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
			created, err := s.DuplicateCake(meta.ID, name)
			if err != nil {
				return classify(err)
			}
			if a.flags.jsonMode {
				return printJSON(cmd, newCakeView(created.Meta, created.ID))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created cake %q (%s)\n", created.Meta.Name, created.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&cakeID, "cake", "", "cake id (default: active cake)")
	cmd.Flags().StringVar(&name, "name", "", "name of the copy (default: \"Copy of <name>\")")
	return cmd
}

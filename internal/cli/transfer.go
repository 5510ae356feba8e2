package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/cake/internal/transfer"
)

func newExportCmd(a *app) *cobra.Command {
	var cakeID, outDir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a cake to <name>.cake.json",
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
			filename, data, err := transfer.ExportJSON(meta.Name, picks)
			if err != nil {
				return sysError(err)
			}
			path := filepath.Join(outDir, filename)
			if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
				return sysError(fmt.Errorf("write export: %w", err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&cakeID, "cake", "", "cake id (default: active cake)")
	cmd.Flags().StringVar(&outDir, "out", ".", "directory to write the export to")
	return cmd
}

func newExportNameCmd(a *app) *cobra.Command {
	var cakeID string
	var png bool
	cmd := &cobra.Command{
		Use:   "export-name",
		Short: "Print the export file name of a cake",
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
			name := transfer.JSONFilename(meta.Name)
			if png {
				name = transfer.PNGFilename(meta.Name)
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}
	cmd.Flags().StringVar(&cakeID, "cake", "", "cake id (default: active cake)")
	cmd.Flags().BoolVar(&png, "png", false, "print the PNG snapshot file name")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Create a cake from an export file",
		Long: "Read a .cake.json export (or a bare JSON array of picks) and create a new\n" +
			"active cake from it. With --overwrite the active cake's picks are replaced\n" +
			"instead. A file that fails to parse leaves storage untouched.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return userError(fmt.Errorf("read import: %w", err))
			}
			doc, err := transfer.ParseImport(data, a.now())
			if err != nil {
				return userError(fmt.Errorf("failed to import %s: %w", args[0], err))
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if overwrite {
				meta, err := targetCake(s, "")
				if err != nil {
					return err
				}
				if err := s.ReplacePicks(meta.ID, doc.Picks); err != nil {
					return classify(err)
				}
				fmt.Fprintf(out, "Replaced %d picks on cake %s\n", len(doc.Picks), meta.ID)
				return nil
			}

			created, err := s.CreateNewCake(doc.Name, doc.Picks, a.defaultTheme())
			if err != nil {
				return classify(err)
			}
			fmt.Fprintf(out, "Created cake %q (%s) with %d picks\n", created.Meta.Name, created.ID, len(doc.Picks))
			return nil
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace the active cake's picks")
	return cmd
}

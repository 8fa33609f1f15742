package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/sticky-situation/sticky/internal/store"
	"github.com/sticky-situation/sticky/internal/ui"
)

func newExportCmd(c *cli) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "export",
		GroupID: "notes",
		Short:   "Write every stored note to JSON Lines",
		Long: `Export the database as JSON Lines, one note per line with its
attachments. The output can be loaded on another machine with 'sticky import'.

Without --output the notes are written to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := c.openStore()
			if err != nil {
				return err
			}
			defer database.Close()

			if output == "" || output == "-" {
				_, err := database.Export(cmd.Context(), cmd.OutOrStdout())
				return err
			}

			var buf bytes.Buffer
			n, err := database.Export(cmd.Context(), &buf)
			if err != nil {
				return err
			}
			if err := atomic.WriteFile(output, &buf); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s Exported %d note(s) to %s\n", ui.RenderPass("✓"), n, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default: stdout)")
	return cmd
}

func newImportCmd(c *cli) *cobra.Command {
	var opts store.ImportOptions

	cmd := &cobra.Command{
		Use:     "import [file]",
		GroupID: "notes",
		Short:   "Load notes from a JSON Lines export",
		Long: `Import notes written by 'sticky export'. A note replaces the stored copy
only when it was modified more recently, unless --force is given.

Imported notes reach Stickies.app on the next 'sticky sync'. With no file
argument, or with -, the export is read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				// #nosec G304 - path from CLI
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer f.Close()
				in = f
			}

			database, err := c.openStore()
			if err != nil {
				return err
			}
			defer database.Close()

			result, err := database.Import(cmd.Context(), in, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			verb := "Imported"
			if opts.DryRun {
				verb = "Would import"
			}
			fmt.Fprintf(out, "%s %s %d of %d note(s)", ui.RenderPass("✓"), verb, result.Imported, result.Read)
			if result.Skipped > 0 {
				fmt.Fprintf(out, " %s", ui.RenderMuted(fmt.Sprintf("(%d already up to date)", result.Skipped)))
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report what would be imported without writing")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite stored notes even when they are newer")
	return cmd
}

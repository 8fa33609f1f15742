package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sticky-situation/sticky/internal/bundle"
	"github.com/sticky-situation/sticky/internal/meta"
	"github.com/sticky-situation/sticky/internal/sticky"
	"github.com/sticky-situation/sticky/internal/store"
	"github.com/sticky-situation/sticky/internal/ui"
)

func newStatusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		GroupID: "sync",
		Short:   "Show database and Stickies status",
		Long: `Display where sticky keeps its data and what it can see.

Shows:
  - Database location, size and note count
  - Stickies directory, bundle count and state file
  - Whether Stickies.app is running`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ctx := cmd.Context()

			fmt.Fprintf(out, "\n%s Sticky Status\n\n", ui.RenderAccent("📊"))

			info, err := os.Stat(c.cfg.DatabasePath)
			switch {
			case os.IsNotExist(err):
				fmt.Fprintf(out, "Database: %s %s\n", c.cfg.DatabasePath, ui.RenderWarn("(not created; run 'sticky sync')"))
			case err != nil:
				return fmt.Errorf("failed to check database: %w", err)
			default:
				count, err := countNotes(ctx, c.cfg.DatabasePath)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Database: %s\n", c.cfg.DatabasePath)
				fmt.Fprintf(out, "Size: %s\n", formatSize(info.Size()))
				fmt.Fprintf(out, "Notes: %d\n", count)
				fmt.Fprintf(out, "Modified: %s\n", info.ModTime().Format(timeLayout))
			}

			fmt.Fprintln(out)
			found, err := bundle.Discover(c.cfg.StickiesDir)
			switch {
			case errors.Is(err, sticky.ErrNotFound):
				fmt.Fprintf(out, "Stickies: %s %s\n", c.cfg.StickiesDir, ui.RenderWarn("(not found)"))
			case err != nil:
				return err
			default:
				statePath := c.cfg.StateFile
				if statePath == "" {
					statePath = meta.ResolvePath(c.cfg.StickiesDir)
				}
				fmt.Fprintf(out, "Stickies: %s\n", c.cfg.StickiesDir)
				fmt.Fprintf(out, "Bundles: %d\n", len(found))
				fmt.Fprintf(out, "State file: %s\n", statePath)
			}

			running, err := c.controller.IsRunning(ctx)
			switch {
			case errors.Is(err, sticky.ErrUnsupported):
				fmt.Fprintf(out, "%s: %s\n", c.cfg.AppName, ui.RenderMuted("unavailable on this platform"))
			case err != nil:
				fmt.Fprintf(out, "%s: %s\n", c.cfg.AppName, ui.RenderWarn(err.Error()))
			case running:
				fmt.Fprintf(out, "%s: %s\n", c.cfg.AppName, ui.RenderPass("running"))
			default:
				fmt.Fprintf(out, "%s: %s\n", c.cfg.AppName, ui.RenderMuted("not running"))
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}

// countNotes counts stored notes without creating the schema.
func countNotes(ctx context.Context, path string) (int, error) {
	database, err := store.Open(path)
	if err != nil {
		return 0, err
	}
	defer database.Close()
	return database.CountContext(ctx)
}

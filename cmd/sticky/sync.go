package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sticky-situation/sticky/internal/reconcile"
	"github.com/sticky-situation/sticky/internal/sticky"
	"github.com/sticky-situation/sticky/internal/sync"
	"github.com/sticky-situation/sticky/internal/ui"
)

func newSyncCmd(c *cli) *cobra.Command {
	var (
		dryRun          bool
		continueOnError bool
		restart         bool
	)

	cmd := &cobra.Command{
		Use:     "sync",
		GroupID: "sync",
		Short:   "Sync Stickies.app notes with the database",
		Long: `Run one reconciliation pass between the Stickies data directory and the database.

For every note:
  1. Present only on disk        → stored in the database
  2. Newer on disk               → database updated
  3. Newer in the database       → bundle and window state rewritten
  4. Present only in the database → bundle and window state created
  5. Same modification time      → left alone

Stickies.app only reads its files at launch; pass --restart to relaunch it
when notes were written to disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := c.openStore()
			if err != nil {
				return err
			}
			defer database.Close()

			conflictLog, closer := c.cfg.ConflictLogger()
			defer closer.Close()

			out := cmd.OutOrStdout()
			syncer := sync.New(database, sync.Config{
				StickiesDir:     c.cfg.StickiesDir,
				StatePath:       c.cfg.StateFile,
				Hostname:        c.cfg.Hostname,
				DryRun:          dryRun,
				ContinueOnError: continueOnError || c.cfg.ContinueOnError,
				Logger:          c.logger(cmd.ErrOrStderr(), "[sync] "),
				ConflictLog:     conflictLog,
			})

			fmt.Fprintf(out, "%s Syncing %s...\n", ui.RenderAccent("🔄"), c.cfg.StickiesDir)

			result, err := syncer.Pass(cmd.Context())
			if err != nil {
				if errors.Is(err, sticky.ErrNotFound) {
					return fmt.Errorf("%w (has Stickies.app been launched?)", err)
				}
				return err
			}

			if dryRun || c.verbose {
				for _, action := range result.Actions {
					if action.Kind == reconcile.NoChange && !dryRun {
						continue
					}
					fmt.Fprintf(out, "   %-17s %s\n", action.Kind, action.ID)
				}
			}

			counts := result.Counts
			if dryRun {
				fmt.Fprintf(out, "%s Dry run: %d notes, %d would change\n",
					ui.RenderWarn("⚠"), counts.Total(), counts.Changes())
				return nil
			}

			fmt.Fprintf(out, "%s Sync complete in %v\n", ui.RenderPass("✓"), result.Duration.Round(time.Millisecond))
			fmt.Fprintf(out, "   New on disk:        %d\n", counts.NewOnFilesystem)
			fmt.Fprintf(out, "   Database updated:   %d\n", counts.UpdateDatabase)
			fmt.Fprintf(out, "   Bundles updated:    %d\n", counts.UpdateFilesystem)
			fmt.Fprintf(out, "   New from database:  %d\n", counts.NewInDatabase)
			fmt.Fprintf(out, "   Unchanged:          %d\n", counts.NoChange)

			for _, f := range result.Failed {
				fmt.Fprintf(out, "%s %v\n", ui.RenderFail("✗"), f.Err)
			}

			if result.FilesystemChanged {
				if restart {
					if err := reloadStickies(cmd, c); err != nil {
						return err
					}
				} else {
					fmt.Fprintf(out, "%s Notes were written to disk; run 'sticky hup' to reload Stickies.app\n", ui.RenderWarn("⚠"))
				}
			}

			if len(result.Failed) > 0 {
				return fmt.Errorf("%d of %d notes failed to sync", len(result.Failed), counts.Changes())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "classify notes without writing anything")
	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "keep going after a note fails")
	cmd.Flags().BoolVar(&restart, "restart", false, "relaunch Stickies.app when notes were written to disk")

	return cmd
}

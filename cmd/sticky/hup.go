package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sticky-situation/sticky/internal/sticky"
	"github.com/sticky-situation/sticky/internal/ui"
)

func newHupCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "hup",
		GroupID: "sync",
		Short:   "Restart Stickies.app so it rereads its notes",
		Long: `Restart Stickies.app, or launch it if it is not running.

Stickies.app reads its notes only at launch and writes them back when it
quits, so it must be restarted after notes change on disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return reloadStickies(cmd, c)
		},
	}
}

// reloadStickies restarts the app when it is running and launches it otherwise.
func reloadStickies(cmd *cobra.Command, c *cli) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	running, err := c.controller.IsRunning(ctx)
	if errors.Is(err, sticky.ErrUnsupported) {
		fmt.Fprintf(out, "%s Cannot control %s on this platform\n", ui.RenderWarn("⚠"), c.cfg.AppName)
		return nil
	}
	if err != nil {
		return err
	}

	if running {
		fmt.Fprintf(out, "%s Restarting %s...\n", ui.RenderAccent("🔄"), c.cfg.AppName)
		if err := c.controller.Restart(ctx); err != nil {
			return fmt.Errorf("failed to restart %s: %w", c.cfg.AppName, err)
		}
	} else {
		fmt.Fprintf(out, "%s Launching %s...\n", ui.RenderAccent("🚀"), c.cfg.AppName)
		if err := c.controller.Launch(ctx); err != nil {
			return fmt.Errorf("failed to launch %s: %w", c.cfg.AppName, err)
		}
	}

	fmt.Fprintf(out, "%s %s reloaded\n", ui.RenderPass("✓"), c.cfg.AppName)
	return nil
}

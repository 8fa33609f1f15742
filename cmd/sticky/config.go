package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/sticky-situation/sticky/internal/config"
	"github.com/sticky-situation/sticky/internal/ui"
)

func newConfigCmd(c *cli) *cobra.Command {
	var edit bool

	cmd := &cobra.Command{
		Use:     "config",
		GroupID: "setup",
		Short:   "Print or edit the configuration file",
		Long: `Print the path of config.toml, creating it with defaults if needed.

With --edit, open it in $EDITOR instead. Every key can also be set through
the environment as STICKY_<KEY>, e.g. STICKY_DATABASE_PATH.`,
		Args: cobra.NoArgs,
		// A broken config file must stay editable
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				path = p
			}

			created, err := config.EnsureFile(path)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s Wrote default config\n", ui.RenderPass("✓"))
			}

			if !edit {
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			}

			editor := os.Getenv("EDITOR")
			if editor == "" {
				return fmt.Errorf("EDITOR environment variable not set (config file is at %s)", path)
			}

			ed := exec.CommandContext(cmd.Context(), editor, path)
			ed.Stdin = os.Stdin
			ed.Stdout = os.Stdout
			ed.Stderr = os.Stderr
			if err := ed.Run(); err != nil {
				var exitErr *exec.ExitError
				if errors.As(err, &exitErr) {
					return fmt.Errorf("editor exited with status %d", exitErr.ExitCode())
				}
				return fmt.Errorf("failed to start editor: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&edit, "edit", "e", false, "open the config file in $EDITOR")

	return cmd
}

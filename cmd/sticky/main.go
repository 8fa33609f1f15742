// Command sticky keeps macOS Stickies notes in a searchable SQLite database.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/sticky-situation/sticky/internal/app"
	"github.com/sticky-situation/sticky/internal/config"
	"github.com/sticky-situation/sticky/internal/store"
)

// cli carries state shared by every command.
type cli struct {
	configPath string
	verbose    bool

	cfg        *config.Config
	controller app.Controller
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "sticky",
		Short: "Sync macOS Stickies with a searchable database",
		Long: `sticky keeps the notes of Stickies.app and a SQLite database in agreement.

Each sync pass compares the modification time of every note on both sides
and copies the newer version across. The database carries a full-text index
so notes can be searched from the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load()
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: user config dir)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "verbose output")

	root.AddGroup(
		&cobra.Group{ID: "sync", Title: "Sync Commands:"},
		&cobra.Group{ID: "notes", Title: "Note Commands:"},
		&cobra.Group{ID: "setup", Title: "Setup Commands:"},
	)

	root.AddCommand(
		newSyncCmd(c),
		newStatusCmd(c),
		newHupCmd(c),
		newNewCmd(c),
		newSearchCmd(c),
		newListCmd(c),
		newShowCmd(c),
		newExportCmd(c),
		newImportCmd(c),
		newConfigCmd(c),
	)

	return root
}

// load reads the configuration once per process.
func (c *cli) load() error {
	if c.cfg == nil {
		cfg, err := config.Load(c.configPath)
		if err != nil {
			return err
		}
		c.cfg = cfg
	}
	if c.controller == nil {
		c.controller = app.New(c.cfg.AppName)
	}
	return nil
}

// openStore creates the database directory if needed and opens the store.
func (c *cli) openStore() (*store.DB, error) {
	if err := c.cfg.EnsureDirs(); err != nil {
		return nil, err
	}
	database, err := store.Create(c.cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

// logger returns a progress logger writing to w when verbose.
func (c *cli) logger(w io.Writer, prefix string) *log.Logger {
	if !c.verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(w, prefix, log.LstdFlags)
}

func main() {
	if err := newRootCmd(&cli{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

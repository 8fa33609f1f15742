package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sticky-situation/sticky/internal/bundle"
	"github.com/sticky-situation/sticky/internal/meta"
	"github.com/sticky-situation/sticky/internal/rtf"
	"github.com/sticky-situation/sticky/internal/sticky"
	"github.com/sticky-situation/sticky/internal/ui"
)

func newNewCmd(c *cli) *cobra.Command {
	var (
		color     string
		noRestart bool
	)

	cmd := &cobra.Command{
		Use:     "new [text...]",
		GroupID: "notes",
		Short:   "Create a new sticky note",
		Long: `Create a note in Stickies.app and in the database.

The text comes from the arguments, from stdin when it is piped, or from an
interactive prompt. The window is cascaded from the top-left so it does not
cover an existing note. Stickies.app is restarted to show the new note
unless --no-restart is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validColor(color) {
				return fmt.Errorf("unknown color %q (choose from %s)", color, strings.Join(sticky.ColorNames(), ", "))
			}

			text, err := noteText(cmd, args)
			if err != nil {
				return err
			}
			if text == "" {
				return errors.New("no text provided")
			}

			dir := c.cfg.StickiesDir
			if info, err := os.Stat(dir); err != nil || !info.IsDir() {
				return fmt.Errorf("%w: stickies directory %s (has Stickies.app been launched?)", sticky.ErrNotFound, dir)
			}

			database, err := c.openStore()
			if err != nil {
				return err
			}
			defer database.Close()

			// Stickies.app names bundles with uppercase UUIDs
			id := strings.ToUpper(uuid.NewString())
			doc := rtf.Minimal(text)
			path := bundle.Path(dir, id)

			if err := bundle.Write(&bundle.Bundle{Document: doc}, path); err != nil {
				return err
			}
			now := time.Now().Unix()
			if err := bundle.SetModified(path, now); err != nil {
				return err
			}

			statePath := c.cfg.StateFile
			if statePath == "" {
				statePath = meta.ResolvePath(dir)
			}
			existing, err := meta.ReadFile(statePath)
			if err != nil {
				return err
			}
			frames := make([]string, 0, len(existing))
			for _, a := range existing {
				frames = append(frames, a.Frame)
			}

			appearance := sticky.Appearance{
				ColorIndex: sticky.ColorIndexFor(color),
				Frame:      sticky.NextPlacement(frames),
			}
			if err := meta.UpdateEntry(statePath, id, appearance); err != nil {
				return err
			}
			blob, err := meta.EncodeAppearance(appearance)
			if err != nil {
				return err
			}

			note := &sticky.Note{
				ID:         id,
				PlainText:  text,
				RichText:   doc,
				Metadata:   blob,
				Color:      appearance.ColorName(),
				CreatedAt:  now,
				ModifiedAt: now,
				OriginHost: c.cfg.Hostname,
			}
			if err := database.UpsertContext(cmd.Context(), note); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Created sticky: %s\n", ui.RenderPass("✓"), ui.RenderAccent(id))
			fmt.Fprintf(out, "   Content: %s\n", ui.Truncate(text, 60))

			if noRestart {
				return nil
			}
			return reloadStickies(cmd, c)
		},
	}

	cmd.Flags().StringVar(&color, "color", sticky.DefaultColor, "note color ("+strings.Join(sticky.ColorNames(), ", ")+")")
	cmd.Flags().BoolVar(&noRestart, "no-restart", false, "do not restart Stickies.app")

	return cmd
}

// noteText joins the arguments, or reads piped stdin, or prompts.
func noteText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(strings.Join(args, " ")), nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && ui.IsTerminal(f) {
		var text string
		err := huh.NewText().
			Title("New sticky").
			Placeholder("Type the note").
			Value(&text).
			Run()
		if err != nil {
			return "", fmt.Errorf("prompt cancelled: %w", err)
		}
		return strings.TrimSpace(text), nil
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func validColor(name string) bool {
	for _, c := range sticky.ColorNames() {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}

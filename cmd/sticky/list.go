package main

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/sticky-situation/sticky/internal/store"
)

func newListCmd(c *cli) *cobra.Command {
	var (
		color string
		since string
		limit int
	)

	cmd := &cobra.Command{
		Use:     "list",
		GroupID: "notes",
		Short:   "List stored notes, newest first",
		Long: `List the notes in the database, most recently modified first.

--since accepts a date (2026-01-31) or a phrase such as "yesterday" or
"3 days ago".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := store.ListFilter{Color: color, Limit: limit}
			if since != "" {
				t, err := parseSince(since, time.Now())
				if err != nil {
					return err
				}
				filter.Since = t
			}

			database, err := c.openStore()
			if err != nil {
				return err
			}
			defer database.Close()

			notes, err := database.ListContext(cmd.Context(), filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(notes) == 0 {
				if color != "" {
					fmt.Fprintf(out, "No %s stickies found\n", color)
				} else {
					fmt.Fprintln(out, "No stickies found")
				}
				return nil
			}

			fmt.Fprintf(out, "Found %d sticky/stickies:\n\n", len(notes))
			printNotes(out, notes, 60)
			return nil
		},
	}

	cmd.Flags().StringVar(&color, "color", "", "only notes of this color")
	cmd.Flags().StringVar(&since, "since", "", "only notes modified since this date or phrase")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of notes (0 = all)")

	return cmd
}

// parseSince reads an absolute date, or a natural-language phrase relative
// to now.
func parseSince(s string, now time.Time) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, err := w.Parse(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse --since %q: %w", s, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("failed to parse --since %q: not a date", s)
	}
	return r.Time, nil
}

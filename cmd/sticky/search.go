package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sticky-situation/sticky/internal/sticky"
)

func newSearchCmd(c *cli) *cobra.Command {
	var (
		color string
		limit int
	)

	cmd := &cobra.Command{
		Use:     "search <query>",
		GroupID: "notes",
		Short:   "Full-text search of stored notes",
		Long: `Search the database for notes containing every word of the query.

Matching is by whole word and ignores case; end a word with * to match it
as a prefix (meet* finds "meeting"). Run 'sticky sync' first to pick up
recent edits.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := c.openStore()
			if err != nil {
				return err
			}
			defer database.Close()

			query := strings.Join(args, " ")
			results, err := database.SearchContext(cmd.Context(), query)
			if err != nil {
				return err
			}

			var filtered []*sticky.Note
			for _, n := range results {
				if color != "" && !strings.EqualFold(n.Color, color) {
					continue
				}
				filtered = append(filtered, n)
				if limit > 0 && len(filtered) == limit {
					break
				}
			}

			out := cmd.OutOrStdout()
			if len(filtered) == 0 {
				fmt.Fprintf(out, "No results found for '%s'\n", query)
				return nil
			}

			fmt.Fprintf(out, "Found %d result(s):\n\n", len(filtered))
			printNotes(out, filtered, 100)
			return nil
		},
	}

	cmd.Flags().StringVar(&color, "color", "", "only notes of this color")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of results (0 = all)")

	return cmd
}

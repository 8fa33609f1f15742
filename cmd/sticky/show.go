package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sticky-situation/sticky/internal/meta"
	"github.com/sticky-situation/sticky/internal/sticky"
	"github.com/sticky-situation/sticky/internal/ui"
)

// noteView is the serialized form printed by show --format json|yaml.
type noteView struct {
	ID            string           `json:"id" yaml:"id"`
	Color         string           `json:"color" yaml:"color"`
	OriginHost    string           `json:"origin_host" yaml:"origin_host"`
	CreatedAt     time.Time        `json:"created_at" yaml:"created_at"`
	ModifiedAt    time.Time        `json:"modified_at" yaml:"modified_at"`
	Frame         string           `json:"frame,omitempty" yaml:"frame,omitempty"`
	Floating      bool             `json:"floating" yaml:"floating"`
	Text          string           `json:"text" yaml:"text"`
	RichTextBytes int              `json:"rich_text_bytes" yaml:"rich_text_bytes"`
	Attachments   []attachmentView `json:"attachments,omitempty" yaml:"attachments,omitempty"`
}

type attachmentView struct {
	Name string `json:"name" yaml:"name"`
	Size int    `json:"size" yaml:"size"`
}

func newNoteView(n *sticky.Note) noteView {
	v := noteView{
		ID:            n.ID,
		Color:         n.Color,
		OriginHost:    n.OriginHost,
		CreatedAt:     time.Unix(n.CreatedAt, 0).UTC(),
		ModifiedAt:    time.Unix(n.ModifiedAt, 0).UTC(),
		Text:          n.PlainText,
		RichTextBytes: len(n.RichText),
	}
	if a, err := meta.DecodeAppearance(n.Metadata); err == nil {
		v.Frame = a.Frame
		v.Floating = a.Floating
	}
	for _, a := range n.Attachments {
		v.Attachments = append(v.Attachments, attachmentView{Name: a.Name, Size: len(a.Content)})
	}
	return v
}

func newShowCmd(c *cli) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "show <id>",
		GroupID: "notes",
		Short:   "Show one stored note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "text", "json", "yaml":
			default:
				return fmt.Errorf("unknown format %q (choose text, json or yaml)", format)
			}

			database, err := c.openStore()
			if err != nil {
				return err
			}
			defer database.Close()

			note, err := database.GetContext(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if note == nil {
				return fmt.Errorf("%w: %s", sticky.ErrNoteNotFound, args[0])
			}

			out := cmd.OutOrStdout()
			view := newNoteView(note)

			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(view); err != nil {
					return err
				}
				return enc.Close()
			}

			fmt.Fprintf(out, "%s %s\n", ui.RenderHeader("Sticky"), ui.RenderAccent(note.ID))
			fmt.Fprintf(out, "Color: %s\n", ui.RenderColorTag(note.Color))
			fmt.Fprintf(out, "Source Machine: %s\n", note.OriginHost)
			fmt.Fprintf(out, "Created: %s\n", formatTime(note.CreatedAt))
			fmt.Fprintf(out, "Modified: %s\n", formatTime(note.ModifiedAt))
			fmt.Fprintf(out, "\nContent:\n%s\n", note.PlainText)
			if len(note.RichText) > 0 {
				fmt.Fprintf(out, "\n%s\n", ui.RenderMuted(fmt.Sprintf("(RTF data: %d bytes)", len(note.RichText))))
			}
			for _, a := range view.Attachments {
				fmt.Fprintf(out, "%s\n", ui.RenderMuted(fmt.Sprintf("Attachment: %s (%s)", a.Name, formatSize(int64(a.Size)))))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json or yaml")

	return cmd
}

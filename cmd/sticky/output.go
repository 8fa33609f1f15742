package main

import (
	"fmt"
	"io"
	"time"

	"github.com/sticky-situation/sticky/internal/sticky"
	"github.com/sticky-situation/sticky/internal/ui"
)

const timeLayout = "2006-01-02 15:04:05"

func formatTime(ts int64) string {
	return time.Unix(ts, 0).Local().Format(timeLayout)
}

// printNotes writes the summary block used by search and list.
func printNotes(w io.Writer, notes []*sticky.Note, previewLen int) {
	for _, n := range notes {
		fmt.Fprintf(w, "%s  %s\n", ui.RenderAccent(n.ID), ui.RenderColorTag(n.Color))
		fmt.Fprintf(w, "   %s\n", ui.Truncate(n.PlainText, previewLen))
		fmt.Fprintf(w, "   %s\n", ui.RenderMuted("Modified: "+formatTime(n.ModifiedAt)))
	}
}

// formatSize renders a byte count for humans.
func formatSize(size int64) string {
	switch {
	case size > 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	case size > 1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}

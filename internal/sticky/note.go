// Package sticky defines the note model shared by the filesystem adapters,
// the store and the reconciliation engine.
//
// A note lives in two places at once:
//
//	Stickies data directory                      SQLite database
//	     ├── <ID>.rtfd/TXT.rtf        ─┐       ┌─ notes        (one row per note)
//	     ├── <ID>.rtfd/<attachments>   ├─ Note ─┤  attachments  (one row per file)
//	     └── .SavedStickiesState      ─┘       └─ notes_fts    (shadow search index)
//
// Identifiers are opaque and compared case-insensitively: Stickies.app is
// observed to write the same UUID in different cases depending on the file.
package sticky

import "strings"

// DefaultFrame is the window frame used when a note has no recorded frame.
const DefaultFrame = "{{100, 100}, {250, 250}}"

// DefaultColor is the appearance tag for color index 0 and any unknown index.
const DefaultColor = "yellow"

// colors maps Stickies color indexes to appearance tags.
var colors = [...]string{"yellow", "blue", "green", "pink", "purple", "gray"}

// Attachment is a named file stored next to the primary document of a bundle.
type Attachment struct {
	Name    string
	Content []byte
}

// Note is the unit of synchronization.
type Note struct {
	ID        string
	PlainText string // derived from RichText, feeds the search index
	RichText  []byte // authoritative content (RTF)
	// Metadata is the serialized Appearance record (see package meta).
	Metadata    []byte
	Attachments []Attachment
	Color       string
	CreatedAt   int64
	ModifiedAt  int64
	OriginHost  string
}

// Appearance describes a note's window as recorded in the Stickies state file.
type Appearance struct {
	ColorIndex int
	Frame      string
	Floating   bool
}

// DefaultAppearance returns the appearance of a note with no recorded state.
func DefaultAppearance() Appearance {
	return Appearance{Frame: DefaultFrame}
}

// ColorName returns the appearance tag for the appearance's color index.
func (a Appearance) ColorName() string {
	return ColorName(a.ColorIndex)
}

// ColorName maps a color index to its appearance tag.
func ColorName(index int) string {
	if index < 0 || index >= len(colors) {
		return DefaultColor
	}
	return colors[index]
}

// ColorIndexFor is the reverse of ColorName. Unknown names map to 0.
func ColorIndexFor(name string) int {
	for i, c := range colors {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return 0
}

// ColorNames returns every appearance tag in index order.
func ColorNames() []string {
	return append([]string(nil), colors[:]...)
}

// SameID reports whether two note identifiers refer to the same note.
func SameID(a, b string) bool {
	return strings.EqualFold(a, b)
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/sticky-situation/sticky/internal/bundle"
	"github.com/sticky-situation/sticky/internal/sticky"
)

// Record is the JSON Lines form of a note, one object per line.
// Byte fields are base64 encoded by encoding/json.
type Record struct {
	ID          string             `json:"id"`
	PlainText   string             `json:"plain_text"`
	RichText    []byte             `json:"rich_text"`
	Metadata    []byte             `json:"metadata,omitempty"`
	Color       string             `json:"color"`
	CreatedAt   int64              `json:"created_at"`
	ModifiedAt  int64              `json:"modified_at"`
	OriginHost  string             `json:"origin_host,omitempty"`
	Attachments []RecordAttachment `json:"attachments,omitempty"`
}

// RecordAttachment is an attachment inside a Record.
type RecordAttachment struct {
	Name    string `json:"name"`
	Content []byte `json:"content"`
}

// ImportOptions configures Import.
type ImportOptions struct {
	DryRun bool // Count what would change without writing
	Force  bool // Overwrite stored notes even when they are newer
}

// ImportResult contains statistics about an import.
type ImportResult struct {
	Read     int
	Imported int
	Skipped  int // stored copy was newer or equally new
}

// NoteToRecord converts a note to its export form.
func NoteToRecord(note *sticky.Note) *Record {
	rec := &Record{
		ID:         note.ID,
		PlainText:  note.PlainText,
		RichText:   note.RichText,
		Metadata:   note.Metadata,
		Color:      note.Color,
		CreatedAt:  note.CreatedAt,
		ModifiedAt: note.ModifiedAt,
		OriginHost: note.OriginHost,
	}
	for _, a := range note.Attachments {
		rec.Attachments = append(rec.Attachments, RecordAttachment{Name: a.Name, Content: a.Content})
	}
	return rec
}

// Note converts the record back to a note.
func (r *Record) Note() *sticky.Note {
	note := &sticky.Note{
		ID:         r.ID,
		PlainText:  r.PlainText,
		RichText:   r.RichText,
		Metadata:   r.Metadata,
		Color:      r.Color,
		CreatedAt:  r.CreatedAt,
		ModifiedAt: r.ModifiedAt,
		OriginHost: r.OriginHost,
	}
	for _, a := range r.Attachments {
		note.Attachments = append(note.Attachments, sticky.Attachment{Name: a.Name, Content: a.Content})
	}
	return note
}

// Export writes every stored note, attachments included, to w as JSON Lines
// ordered by ID. It returns the number of notes written.
func (db *DB) Export(ctx context.Context, w io.Writer) (int, error) {
	ids, err := db.AllIDsContext(ctx)
	if err != nil {
		return 0, err
	}
	sort.Strings(ids)

	enc := json.NewEncoder(w)
	written := 0
	for _, id := range ids {
		note, err := db.GetContext(ctx, id)
		if err != nil {
			return written, err
		}
		if note == nil {
			continue
		}
		if err := enc.Encode(NoteToRecord(note)); err != nil {
			return written, fmt.Errorf("failed to write note %s: %w", id, err)
		}
		written++
	}
	return written, nil
}

// Import reads JSON Lines produced by Export and stores each note whose
// modification time is newer than the stored copy. Notes absent from the
// database are always stored.
//
// A malformed line, or an id that is not a plain bundle name, aborts the
// import; notes stored before it are kept.
func (db *DB) Import(ctx context.Context, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}
	dec := json.NewDecoder(r)
	line := 0

	for {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return result, fmt.Errorf("%w: invalid JSON at record %d: %w", sticky.ErrFormat, line+1, err)
		}
		line++
		if rec.ID == "" {
			return result, fmt.Errorf("%w: record %d has no id", sticky.ErrFormat, line)
		}
		if err := bundle.ValidateID(rec.ID); err != nil {
			return result, fmt.Errorf("record %d: %w", line, err)
		}
		result.Read++

		if err := ctx.Err(); err != nil {
			return result, err
		}

		existing, err := db.GetContext(ctx, rec.ID)
		if err != nil {
			return result, err
		}
		if existing != nil && !opts.Force && existing.ModifiedAt >= rec.ModifiedAt {
			result.Skipped++
			continue
		}

		if !opts.DryRun {
			note := rec.Note()
			if existing != nil {
				// keep the stored spelling so the row is replaced, not duplicated
				note.ID = existing.ID
			}
			if err := db.UpsertContext(ctx, note); err != nil {
				return result, err
			}
		}
		result.Imported++
	}

	return result, nil
}

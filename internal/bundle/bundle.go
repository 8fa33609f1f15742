// Package bundle reads and writes the RTFD directories Stickies.app keeps one
// per note.
//
// A bundle is a directory named <ID>.rtfd holding exactly one primary
// document, TXT.rtf, plus any number of sibling files. Every sibling is an
// attachment: there is no extension allow-list and hidden files are included,
// because Stickies stores images and other auxiliary content the same way and
// anything skipped here would be lost on the next write.
package bundle

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"github.com/sticky-situation/sticky/internal/sticky"
)

// DocumentName is the fixed name of the primary document inside a bundle.
const DocumentName = "TXT.rtf"

// Extension is the directory suffix of a bundle.
const Extension = ".rtfd"

// Bundle is the content of one note's RTFD directory.
type Bundle struct {
	Document    []byte
	Attachments []sticky.Attachment
}

// Path returns the bundle directory for note id inside the Stickies directory.
func Path(dir, id string) string {
	return filepath.Join(dir, id+Extension)
}

// Read loads the bundle at path.
//
// Returns an error wrapping sticky.ErrNotFound when path is not a directory,
// and the underlying I/O error when TXT.rtf is missing or unreadable.
func Read(path string) (*Bundle, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: bundle %s", sticky.ErrNotFound, path)
	}

	doc, err := os.ReadFile(filepath.Join(path, DocumentName))
	if err != nil {
		return nil, fmt.Errorf("failed to read document in %s: %w", path, err)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle %s: %w", path, err)
	}

	b := &Bundle{Document: doc}
	for _, entry := range entries {
		if entry.Name() == DocumentName || !entry.Type().IsRegular() {
			continue
		}

		content, err := os.ReadFile(filepath.Join(path, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read attachment %s: %w", entry.Name(), err)
		}
		b.Attachments = append(b.Attachments, sticky.Attachment{Name: entry.Name(), Content: content})
	}

	return b, nil
}

// Write stores b at path, creating the directory and its parents as needed.
// The primary document is written first, then every attachment; files of the
// same name are replaced, other files already in the directory are left alone.
func Write(b *Bundle, path string) error {
	for _, a := range b.Attachments {
		if err := ValidateName(a.Name); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create bundle directory: %w", err)
	}

	docPath := filepath.Join(path, DocumentName)
	if err := atomic.WriteFile(docPath, bytes.NewReader(b.Document)); err != nil {
		return fmt.Errorf("failed to write document %s: %w", docPath, err)
	}

	for _, a := range b.Attachments {
		p := filepath.Join(path, a.Name)
		if err := atomic.WriteFile(p, bytes.NewReader(a.Content)); err != nil {
			return fmt.Errorf("failed to write attachment %s: %w", p, err)
		}
	}

	return nil
}

// ValidateName checks that name can be stored as an attachment: a plain file
// name that does not collide with the primary document.
func ValidateName(name string) error {
	if err := plainName("attachment name", name); err != nil {
		return err
	}
	if name == DocumentName {
		return fmt.Errorf("%w: attachment name %q collides with the document", sticky.ErrFormat, name)
	}
	return nil
}

// ValidateID checks that id names a bundle directly inside the Stickies
// directory once the extension is appended.
func ValidateID(id string) error {
	return plainName("note id", id)
}

func plainName(what, name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: invalid %s %q", sticky.ErrFormat, what, name)
	case strings.ContainsAny(name, `/\`) || filepath.Base(name) != name:
		return fmt.Errorf("%w: %s %q contains a path separator", sticky.ErrFormat, what, name)
	}
	return nil
}

// LastModified returns the modification time of the bundle's primary
// document in whole seconds since the epoch. The directory and attachment
// times are not considered.
func LastModified(path string) (int64, error) {
	info, err := os.Stat(filepath.Join(path, DocumentName))
	if err != nil {
		return 0, fmt.Errorf("failed to stat document in %s: %w", path, err)
	}
	return info.ModTime().Unix(), nil
}

// SetModified sets the modification time of the bundle's primary document.
func SetModified(path string, ts int64) error {
	t := time.Unix(ts, 0)
	if err := os.Chtimes(filepath.Join(path, DocumentName), t, t); err != nil {
		return fmt.Errorf("failed to set document time in %s: %w", path, err)
	}
	return nil
}

// Discover lists the bundles inside the Stickies directory, keyed by note ID.
//
// Returns an error wrapping sticky.ErrNotFound when dir does not exist.
func Discover(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: stickies directory %s", sticky.ErrNotFound, dir)
		}
		return nil, fmt.Errorf("failed to read stickies directory: %w", err)
	}

	found := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || !strings.HasSuffix(name, Extension) {
			continue
		}
		id := strings.TrimSuffix(name, Extension)
		if id == "" {
			continue
		}
		found[id] = filepath.Join(dir, name)
	}

	return found, nil
}

// IDs returns the keys of a Discover result in sorted order.
func IDs(found map[string]string) []string {
	ids := make([]string, 0, len(found))
	for id := range found {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Package meta reads and updates the Stickies window-state property list.
//
// Stickies.app has written two differently shaped files over time:
//
//	.SavedStickiesState   top-level array of records, each carrying a "UUID" key
//	StickiesState.plist   top-level dictionary keyed by UUID
//
// Both describe the same per-note fields ("Color", "Frame", "Floating"). Decode
// resolves the shape once and returns a single uniform map, so callers never
// branch on the schema. Array-schema identifiers are lowercased because the
// app varies their case; dictionary keys are kept verbatim.
package meta

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"howett.net/plist"

	"github.com/sticky-situation/sticky/internal/sticky"
)

// State file names inside the Stickies data directory.
const (
	SavedStateFile  = ".SavedStickiesState"
	LegacyStateFile = "StickiesState.plist"
)

// Keys of a per-note record.
const (
	keyUUID     = "UUID"
	keyColor    = "Color"
	keyFrame    = "Frame"
	keyFloating = "Floating"
)

// Decode parses a state file into a map from note ID to appearance.
//
// It returns an error wrapping sticky.ErrFormat when data is not a property
// list, or when its top level is neither an array nor a dictionary.
func Decode(data []byte) (map[string]sticky.Appearance, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty state file", sticky.ErrFormat)
	}

	var root interface{}
	if _, err := plist.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: failed to parse state file: %v", sticky.ErrFormat, err)
	}

	result := make(map[string]sticky.Appearance)

	switch v := root.(type) {
	case []interface{}:
		for _, entry := range v {
			dict, ok := entry.(map[string]interface{})
			if !ok {
				continue
			}
			id, ok := dict[keyUUID].(string)
			if !ok {
				continue
			}
			result[strings.ToLower(id)] = fromDict(dict)
		}
	case map[string]interface{}:
		for id, entry := range v {
			dict, ok := entry.(map[string]interface{})
			if !ok {
				continue
			}
			result[id] = fromDict(dict)
		}
	default:
		return nil, fmt.Errorf("%w: state file top level is %T, want array or dictionary", sticky.ErrFormat, root)
	}

	return result, nil
}

// ReadFile decodes the state file at path. A missing file is not an error and
// yields an empty map.
func ReadFile(path string) (map[string]sticky.Appearance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]sticky.Appearance{}, nil
		}
		return nil, fmt.Errorf("failed to read state file %s: %w", path, err)
	}

	m, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ResolvePath returns the state file to use inside a Stickies data directory:
// .SavedStickiesState when present, else StickiesState.plist when present,
// else the .SavedStickiesState path.
func ResolvePath(dir string) string {
	saved := filepath.Join(dir, SavedStateFile)
	if _, err := os.Stat(saved); err == nil {
		return saved
	}
	legacy := filepath.Join(dir, LegacyStateFile)
	if _, err := os.Stat(legacy); err == nil {
		return legacy
	}
	return saved
}

// Lookup finds the appearance for id, trying the exact key before the
// lowercased one. Missing notes get sticky.DefaultAppearance.
func Lookup(m map[string]sticky.Appearance, id string) (sticky.Appearance, bool) {
	if a, ok := m[id]; ok {
		return a, true
	}
	if a, ok := m[strings.ToLower(id)]; ok {
		return a, true
	}
	return sticky.DefaultAppearance(), false
}

// fromDict reads a record, applying defaults for absent or mistyped fields.
func fromDict(dict map[string]interface{}) sticky.Appearance {
	a := sticky.DefaultAppearance()
	if n, ok := toInt(dict[keyColor]); ok {
		a.ColorIndex = n
	}
	if s, ok := dict[keyFrame].(string); ok {
		a.Frame = s
	}
	if b, ok := dict[keyFloating].(bool); ok {
		a.Floating = b
	}
	return a
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case int32:
		return int(n), true
	case uint32:
		return int(n), true
	case float64:
		return int(n), true
	case float32:
		return int(n), true
	default:
		return 0, false
	}
}

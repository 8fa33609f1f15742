package meta

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"howett.net/plist"

	"github.com/sticky-situation/sticky/internal/sticky"
)

// record is the serialized form of an appearance stored in the database.
type record struct {
	Color    int    `plist:"Color"`
	Frame    string `plist:"Frame"`
	Floating bool   `plist:"Floating"`
}

// EncodeAppearance serializes a as an XML property list dictionary.
func EncodeAppearance(a sticky.Appearance) ([]byte, error) {
	data, err := plist.Marshal(record{Color: a.ColorIndex, Frame: a.Frame, Floating: a.Floating}, plist.XMLFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode appearance: %w", err)
	}
	return data, nil
}

// DecodeAppearance is the inverse of EncodeAppearance. An empty blob yields
// the default appearance.
func DecodeAppearance(data []byte) (sticky.Appearance, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return sticky.DefaultAppearance(), nil
	}

	var dict map[string]interface{}
	if _, err := plist.Unmarshal(data, &dict); err != nil {
		return sticky.Appearance{}, fmt.Errorf("%w: failed to decode appearance: %v", sticky.ErrFormat, err)
	}
	return fromDict(dict), nil
}

// UpdateEntry sets the appearance of note id in the state file at path.
//
// The file keeps its schema and on-disk format. Only the Color, Frame and
// Floating keys of the matching record change; other records and unknown keys
// are written back untouched. A record is appended when id is not present. A
// missing file is created with the array schema in binary format.
func UpdateEntry(path, id string, a sticky.Appearance) error {
	var root interface{}
	format := plist.BinaryFormat

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		root = []interface{}{}
	case err != nil:
		return fmt.Errorf("failed to read state file %s: %w", path, err)
	default:
		format, err = plist.Unmarshal(data, &root)
		if err != nil {
			return fmt.Errorf("%w: failed to parse state file %s: %v", sticky.ErrFormat, path, err)
		}
	}

	switch v := root.(type) {
	case []interface{}:
		root = updateArray(v, id, a)
	case map[string]interface{}:
		updateDict(v, id, a)
	default:
		return fmt.Errorf("%w: state file %s top level is %T", sticky.ErrFormat, path, root)
	}

	out, err := plist.Marshal(root, format)
	if err != nil {
		return fmt.Errorf("failed to encode state file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(out)); err != nil {
		return fmt.Errorf("failed to write state file %s: %w", path, err)
	}
	return nil
}

func updateArray(entries []interface{}, id string, a sticky.Appearance) []interface{} {
	for _, entry := range entries {
		dict, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		if uuid, ok := dict[keyUUID].(string); ok && sticky.SameID(uuid, id) {
			applyAppearance(dict, a)
			return entries
		}
	}

	dict := map[string]interface{}{keyUUID: id}
	applyAppearance(dict, a)
	return append(entries, dict)
}

func updateDict(entries map[string]interface{}, id string, a sticky.Appearance) {
	key := id
	if _, ok := entries[key]; !ok {
		for k := range entries {
			if sticky.SameID(k, id) {
				key = k
				break
			}
		}
	}

	dict, ok := entries[key].(map[string]interface{})
	if !ok {
		dict = map[string]interface{}{}
		entries[key] = dict
	}
	applyAppearance(dict, a)
}

func applyAppearance(dict map[string]interface{}, a sticky.Appearance) {
	dict[keyColor] = int64(a.ColorIndex)
	dict[keyFrame] = a.Frame
	dict[keyFloating] = a.Floating
}

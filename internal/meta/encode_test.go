package meta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"howett.net/plist"

	"github.com/sticky-situation/sticky/internal/sticky"
)

func TestUpdateEntry_ArraySchemaPreservesOthers(t *testing.T) {
	path := filepath.Join(t.TempDir(), SavedStateFile)
	require.NoError(t, os.WriteFile(path, []byte(arrayState), 0644))

	// Case differs from the file on purpose.
	target := "5a2c1e3b-0d4f-4e61-9b7a-7c0e9f1a2b3c"
	require.NoError(t, UpdateEntry(path, target, sticky.Appearance{ColorIndex: 1, Frame: "{{5, 5}, {250, 250}}"}))

	m, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, m, 2)
	assert.Equal(t, sticky.Appearance{ColorIndex: 1, Frame: "{{5, 5}, {250, 250}}"}, m[target])
	assert.Equal(t, sticky.DefaultAppearance(), m["b1b2"])

	// The file stays XML and keeps the non-record entries.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var root []interface{}
	format, err := plist.Unmarshal(data, &root)
	require.NoError(t, err)
	assert.Equal(t, plist.XMLFormat, format)
	assert.Len(t, root, 4)
}

func TestUpdateEntry_ArraySchemaAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), SavedStateFile)
	require.NoError(t, os.WriteFile(path, []byte(arrayState), 0644))

	require.NoError(t, UpdateEntry(path, "NEW-ID", sticky.Appearance{ColorIndex: 2, Frame: "f", Floating: true}))

	m, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, m, 3)
	assert.Equal(t, sticky.Appearance{ColorIndex: 2, Frame: "f", Floating: true}, m["new-id"])
	assert.Equal(t, 3, m["5a2c1e3b-0d4f-4e61-9b7a-7c0e9f1a2b3c"].ColorIndex)
}

func TestUpdateEntry_DictSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), LegacyStateFile)
	require.NoError(t, os.WriteFile(path, []byte(dictState), 0644))

	require.NoError(t, UpdateEntry(path, "abc-def", sticky.Appearance{ColorIndex: 3, Frame: "x"}))
	require.NoError(t, UpdateEntry(path, "Added", sticky.Appearance{ColorIndex: 4, Frame: "y"}))

	m, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sticky.Appearance{ColorIndex: 3, Frame: "x"}, m["ABC-DEF"], "existing key matched case-insensitively")
	assert.Equal(t, sticky.Appearance{ColorIndex: 4, Frame: "y"}, m["Added"])
	assert.Equal(t, sticky.DefaultAppearance(), m["ghi"])

	// Unknown keys inside an updated record survive.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var root map[string]interface{}
	_, err = plist.Unmarshal(data, &root)
	require.NoError(t, err)
	assert.Contains(t, root, "junk")
}

func TestUpdateEntry_KeepsUnknownRecordKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), SavedStateFile)
	data, err := plist.Marshal([]interface{}{
		map[string]interface{}{"UUID": "A", "Color": 1, "SpellCheck": true},
	}, plist.BinaryFormat)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	require.NoError(t, UpdateEntry(path, "a", sticky.Appearance{ColorIndex: 5, Frame: "z"}))

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	var root []map[string]interface{}
	format, err := plist.Unmarshal(data, &root)
	require.NoError(t, err)
	assert.Equal(t, plist.BinaryFormat, format)
	require.Len(t, root, 1)
	assert.Equal(t, true, root[0]["SpellCheck"])
	assert.Equal(t, "A", root[0]["UUID"])
}

func TestUpdateEntry_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", SavedStateFile)

	require.NoError(t, UpdateEntry(path, "FRESH", sticky.DefaultAppearance()))

	m, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]sticky.Appearance{"fresh": sticky.DefaultAppearance()}, m)
}

func TestUpdateEntry_RejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), SavedStateFile)
	original := []byte(`<plist version="1.0"><string>nope</string></plist>`)
	require.NoError(t, os.WriteFile(path, original, 0644))

	err := UpdateEntry(path, "id", sticky.DefaultAppearance())
	require.Error(t, err)
	assert.True(t, sticky.IsFormat(err))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, data, "malformed file must not be rewritten")
}

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

const arrayState = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<array>
	<dict>
		<key>UUID</key>
		<string>5A2C1E3B-0D4F-4E61-9B7A-7C0E9F1A2B3C</string>
		<key>Color</key>
		<integer>3</integer>
		<key>Frame</key>
		<string>{{40, 60}, {300, 200}}</string>
		<key>Floating</key>
		<true/>
	</dict>
	<dict>
		<key>UUID</key>
		<string>b1b2</string>
	</dict>
	<dict>
		<key>Color</key>
		<integer>1</integer>
	</dict>
	<string>not a record</string>
</array>
</plist>`

const dictState = `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>ABC-DEF</key>
	<dict>
		<key>Color</key>
		<integer>5</integer>
		<key>Frame</key>
		<string>{{1, 2}, {3, 4}}</string>
	</dict>
	<key>ghi</key>
	<dict>
		<key>Color</key>
		<string>blue</string>
		<key>Floating</key>
		<string>yes</string>
	</dict>
	<key>junk</key>
	<integer>7</integer>
</dict>
</plist>`

func TestDecode_ArraySchema(t *testing.T) {
	m, err := Decode([]byte(arrayState))
	require.NoError(t, err)
	require.Len(t, m, 2)

	a, ok := m["5a2c1e3b-0d4f-4e61-9b7a-7c0e9f1a2b3c"]
	require.True(t, ok, "array schema keys must be lowercased")
	assert.Equal(t, 3, a.ColorIndex)
	assert.Equal(t, "pink", a.ColorName())
	assert.Equal(t, "{{40, 60}, {300, 200}}", a.Frame)
	assert.True(t, a.Floating)

	assert.Equal(t, sticky.DefaultAppearance(), m["b1b2"])
}

func TestDecode_DictSchema(t *testing.T) {
	m, err := Decode([]byte(dictState))
	require.NoError(t, err)
	require.Len(t, m, 2)

	a, ok := m["ABC-DEF"]
	require.True(t, ok, "dictionary schema keys must be kept verbatim")
	assert.Equal(t, 5, a.ColorIndex)
	assert.Equal(t, "{{1, 2}, {3, 4}}", a.Frame)
	assert.False(t, a.Floating)

	_, lowered := m["abc-def"]
	assert.False(t, lowered)

	// Mistyped fields fall back to defaults.
	assert.Equal(t, sticky.DefaultAppearance(), m["ghi"])
}

func TestDecode_BinaryFormat(t *testing.T) {
	data, err := plist.Marshal([]interface{}{
		map[string]interface{}{"UUID": "XYZ", "Color": 2, "Floating": true},
	}, plist.BinaryFormat)
	require.NoError(t, err)

	m, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, sticky.Appearance{ColorIndex: 2, Frame: sticky.DefaultFrame, Floating: true}, m["xyz"])
}

func TestDecode_FormatErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"top-level string", []byte(`<plist version="1.0"><string>hello</string></plist>`)},
		{"top-level integer", []byte(`<plist version="1.0"><integer>4</integer></plist>`)},
		{"truncated xml", []byte(`<?xml version="1.0"?><plist version="1.0"><array><dict>`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			require.Error(t, err)
			assert.True(t, sticky.IsFormat(err), "want format error, got %v", err)
		})
	}
}

func TestReadFile_Missing(t *testing.T) {
	m, err := ReadFile(filepath.Join(t.TempDir(), SavedStateFile))
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestReadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), SavedStateFile)
	require.NoError(t, os.WriteFile(path, []byte(`<plist version="1.0"><real>1.5</real></plist>`), 0644))

	_, err := ReadFile(path)
	require.Error(t, err)
	assert.True(t, sticky.IsFormat(err))
}

func TestLookup(t *testing.T) {
	m := map[string]sticky.Appearance{
		"lower-id": {ColorIndex: 1, Frame: "f"},
		"Mixed":    {ColorIndex: 2, Frame: "g"},
	}

	a, ok := Lookup(m, "LOWER-ID")
	assert.True(t, ok)
	assert.Equal(t, 1, a.ColorIndex)

	a, ok = Lookup(m, "Mixed")
	assert.True(t, ok)
	assert.Equal(t, 2, a.ColorIndex)

	a, ok = Lookup(m, "absent")
	assert.False(t, ok)
	assert.Equal(t, sticky.DefaultAppearance(), a)
}

func TestResolvePath(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, SavedStateFile), ResolvePath(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, LegacyStateFile), []byte(dictState), 0644))
	assert.Equal(t, filepath.Join(dir, LegacyStateFile), ResolvePath(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, SavedStateFile), []byte(arrayState), 0644))
	assert.Equal(t, filepath.Join(dir, SavedStateFile), ResolvePath(dir))
}

func TestAppearanceBlob(t *testing.T) {
	want := sticky.Appearance{ColorIndex: 4, Frame: "{{10, 20}, {250, 250}}", Floating: true}

	data, err := EncodeAppearance(want)
	require.NoError(t, err)

	got, err := DecodeAppearance(data)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = DecodeAppearance(nil)
	require.NoError(t, err)
	assert.Equal(t, sticky.DefaultAppearance(), got)
}

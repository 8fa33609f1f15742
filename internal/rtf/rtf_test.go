package rtf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_StripsControlWords(t *testing.T) {
	doc := `{\rtf1\ansi\deff0 {\fonttbl {\f0 Times;}}\f0\fs24 Hello {\b Bold} and {\i Italic} text\par}`

	got := Extract([]byte(doc))

	assert.Contains(t, got, "Bold")
	assert.Contains(t, got, "Italic")
	assert.Contains(t, got, "Hello")
	assert.NotContains(t, got, `\`)
	assert.NotContains(t, got, "{")
	assert.NotContains(t, got, "}")
	assert.NotContains(t, got, "rtf1")
}

func TestExtract_CollapsesWhitespace(t *testing.T) {
	got := ExtractString("{\\rtf1   one\n\n  two\t\tthree   }")
	assert.Equal(t, "one two three", got)
}

func TestExtract_InvalidUTF8(t *testing.T) {
	assert.Equal(t, "", Extract([]byte{0xff, 0xfe, 0xfd}))
}

func TestExtract_Empty(t *testing.T) {
	assert.Equal(t, "", Extract(nil))
	assert.Equal(t, "", Extract([]byte("{}")))
}

func TestExtract_ControlWordWithDigitsAndNoSpace(t *testing.T) {
	assert.Equal(t, "a b", ExtractString(`a\fs24b`))
}

func TestExtract_DropsLiteralBackslashesAndBraces(t *testing.T) {
	// Escaped data characters are removed too; extraction is best-effort.
	got := ExtractString(`{\rtf1 path C:\\ dir \{x\}}`)
	assert.Equal(t, "path C: dir x", got)
}

func TestMinimal_RoundTrip(t *testing.T) {
	doc := Minimal("Buy milk")

	require.True(t, strings.HasPrefix(string(doc), `{\rtf1\ansi\ansicpg1252`))
	require.True(t, strings.HasSuffix(string(doc), "Buy milk}"))

	got := Extract(doc)
	assert.True(t, strings.HasSuffix(got, "Buy milk"), "extracted %q", got)
}

func TestEscape(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"braces", "{x}", `\{x\}`},
		{"backslash", `a\b`, `a\\b`},
		{"newline", "a\r\nb", "a\\\nb"},
		{"tab", "a\tb", `a\tab b`},
		{"latin1", "café", `caf\'e9`},
		{"cp1252 euro", "€", `\'80`},
		{"outside code page", "日", `\u26085?`},
		{"astral", "😀", `\u-10179?\u-8704?`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Escape(tt.in))
		})
	}
}

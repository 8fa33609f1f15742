// Package rtf extracts searchable plain text from the RTF documents Stickies
// stores in its bundles, and builds minimal documents for new notes.
//
// Extraction is a lossy stripper, not a parser: it does not understand RTF
// groups or escapes, so backslashes and braces that are part of the text are
// dropped along with the markup. The output only feeds the search index.
package rtf

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var (
	controlWord = regexp.MustCompile(`\\[A-Za-z]+[0-9]*\s*`)
	markup      = strings.NewReplacer("{", "", "}", "", `\`, "")
	whitespace  = regexp.MustCompile(`\s+`)
)

// Extract returns the plain text of an RTF payload. It never fails: payloads
// that are not valid UTF-8 produce an empty string.
func Extract(data []byte) string {
	if !utf8.Valid(data) {
		return ""
	}
	return ExtractString(string(data))
}

// ExtractString is Extract for a payload already held as a string.
func ExtractString(doc string) string {
	text := controlWord.ReplaceAllString(doc, " ")
	text = markup.Replace(text)
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// header is the preamble Stickies.app writes for a plain-text note.
const header = `{\rtf1\ansi\ansicpg1252\cocoartf2820
{\fonttbl\f0\fswiss\fcharset0 Helvetica;}
{\colortbl;\red255\green255\blue255;}
\pard\tx560\tx1120\tx1680\tx2240\tx2800\tx3360\tx3920\tx4480\tx5040\tx5600\tx6160\tx6720\pardirnatural\partightenfactor0
\f0\fs24 \cf0 `

// Minimal builds an RTF document containing text, in the form Stickies.app
// itself writes for an unformatted note.
func Minimal(text string) []byte {
	var b strings.Builder
	b.Grow(len(header) + len(text) + 2)
	b.WriteString(header)
	b.WriteString(Escape(text))
	b.WriteString("}")
	return []byte(b.String())
}

// Escape encodes text for use as RTF body content in a Windows-1252 document.
// Characters outside that code page are written as \uN? escapes.
func Escape(text string) string {
	var b strings.Builder
	for _, r := range text {
		switch {
		case r == '\\' || r == '{' || r == '}':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\r':
			// normalized away; \n carries the line break
		case r == '\n':
			b.WriteString("\\\n")
		case r == '\t':
			b.WriteString(`\tab `)
		case r < 0x80:
			b.WriteRune(r)
		default:
			if c, ok := charmap.Windows1252.EncodeRune(r); ok {
				fmt.Fprintf(&b, `\'%02x`, c)
				continue
			}
			for _, u := range utf16Units(r) {
				fmt.Fprintf(&b, `\u%d?`, int16(u))
			}
		}
	}
	return b.String()
}

// utf16Units splits r into UTF-16 code units; RTF \u takes signed 16-bit values.
func utf16Units(r rune) []uint16 {
	if r < 0x10000 {
		return []uint16{uint16(r)}
	}
	r -= 0x10000
	return []uint16{uint16(0xD800 + (r>>10)&0x3FF), uint16(0xDC00 + r&0x3FF)}
}

// Package ui renders console output for the sticky CLI.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/sticky-situation/sticky/internal/sticky"
)

func init() {
	if !ShouldUseColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

var (
	// Color palette
	accentColor  = lipgloss.AdaptiveColor{Light: "#5A3FD0", Dark: "#9D7CF8"}
	successColor = lipgloss.AdaptiveColor{Light: "#027A48", Dark: "#04B575"}
	warningColor = lipgloss.AdaptiveColor{Light: "#B54708", Dark: "#FFA500"}
	errorColor   = lipgloss.AdaptiveColor{Light: "#C01048", Dark: "#FF4B4B"}
	mutedColor   = lipgloss.AdaptiveColor{Light: "#667085", Dark: "#808080"}

	accentStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	passStyle   = lipgloss.NewStyle().Foreground(successColor)
	warnStyle   = lipgloss.NewStyle().Foreground(warningColor)
	failStyle   = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(mutedColor)
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)

	// Stickies paper colors, by appearance tag
	noteColors = map[string]lipgloss.Color{
		"yellow": lipgloss.Color("#FEF49C"),
		"blue":   lipgloss.Color("#AED8F5"),
		"green":  lipgloss.Color("#B5F2A9"),
		"pink":   lipgloss.Color("#FBC4E2"),
		"purple": lipgloss.Color("#D6C4F7"),
		"gray":   lipgloss.Color("#E0E0E0"),
	}
)

// RenderAccent highlights identifiers and headings.
func RenderAccent(s string) string { return accentStyle.Render(s) }

// RenderPass renders success output.
func RenderPass(s string) string { return passStyle.Render(s) }

// RenderWarn renders warnings.
func RenderWarn(s string) string { return warnStyle.Render(s) }

// RenderFail renders errors.
func RenderFail(s string) string { return failStyle.Render(s) }

// RenderMuted renders secondary detail.
func RenderMuted(s string) string { return mutedStyle.Render(s) }

// RenderHeader renders a section title.
func RenderHeader(s string) string { return headerStyle.Render(s) }

// RenderColorTag renders an appearance tag in its note color.
func RenderColorTag(tag string) string {
	c, ok := noteColors[strings.ToLower(tag)]
	if !ok {
		c = noteColors[sticky.DefaultColor]
	}
	return lipgloss.NewStyle().Foreground(c).Render("● " + tag)
}

// Truncate shortens s to at most width runes, marking the cut with "…".
func Truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
)

// ParseHex parses "#RRGGBB" or "RRGGBB". Any other form is rejected.
func ParseHex(hex string) (colorful.Color, bool) {
	h := strings.TrimPrefix(hex, "#")
	if len(h) != 6 {
		return colorful.Color{}, false
	}
	c, err := colorful.Hex("#" + h)
	if err != nil {
		return colorful.Color{}, false
	}
	return c, true
}

// HexToRGB returns the 8-bit channels of a hex color.
func HexToRGB(hex string) (r, g, b uint8, ok bool) {
	c, ok := ParseHex(hex)
	if !ok {
		return 0, 0, 0, false
	}
	r, g, b = c.RGB255()
	return r, g, b, true
}

// Colorize wraps text in a 24-bit foreground escape sequence for hex. The
// text is returned unchanged when enabled is false or hex does not parse.
// The sequence is always true color, independent of the detected terminal.
func Colorize(text, hex string, enabled bool) string {
	if !enabled {
		return text
	}
	c, ok := ParseHex(hex)
	if !ok {
		return text
	}
	return termenv.String(text).Foreground(termenv.TrueColor.Color(c.Hex())).String()
}

// HexStyle is a lipgloss style with hex as the foreground. Invalid colors
// produce an unstyled style.
func HexStyle(hex string) lipgloss.Style {
	c, ok := ParseHex(hex)
	if !ok {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex()))
}

// BadgeStyle renders text on a hex background with a readable foreground.
func BadgeStyle(hex string) lipgloss.Style {
	c, ok := ParseHex(hex)
	if !ok {
		return lipgloss.NewStyle().Reverse(true).Padding(0, 1)
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(c.Hex())).
		Foreground(badgeForeground(c)).
		Padding(0, 1)
}

func badgeForeground(c colorful.Color) lipgloss.Color {
	if l, _, _ := c.Lab(); l < 0.6 {
		return lipgloss.Color("#FFFFFF")
	}
	return lipgloss.Color("#000000")
}

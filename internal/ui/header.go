package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HeaderInfo contains information to display in the header.
type HeaderInfo struct {
	Version   string // e.g. "v0.3.0"
	Namespace string // namespace being sonified
	Interval  string // poll interval, e.g. "5s"
}

// HeaderWidth is the default width of the header divider
const HeaderWidth = 50

// RenderHeader renders the startup banner.
func RenderHeader(info HeaderInfo) string {
	titleStyle := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	versionStyle := lipgloss.NewStyle().Foreground(ColorSecondary)
	mutedStyle := MutedStyle()

	var b strings.Builder

	b.WriteString(titleStyle.Render(SymbolNote + " sonify-k8s"))
	if info.Version != "" {
		b.WriteString(" ")
		b.WriteString(versionStyle.Render(info.Version))
	}
	b.WriteString("\n")

	var details []string
	if info.Namespace != "" {
		details = append(details, "namespace "+info.Namespace)
	}
	if info.Interval != "" {
		details = append(details, "every "+info.Interval)
	}
	if len(details) > 0 {
		b.WriteString(mutedStyle.Render(strings.Join(details, " · ")))
		b.WriteString("\n")
	}

	b.WriteString(mutedStyle.Render(strings.Repeat("━", HeaderWidth)))
	b.WriteString("\n")

	return b.String()
}

// PrintHeader writes the header to w.
func PrintHeader(w io.Writer, info HeaderInfo) {
	fmt.Fprint(w, RenderHeader(info))
}

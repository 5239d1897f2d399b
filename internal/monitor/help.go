package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sonify-k8s/sonify-k8s/internal/sonify"
	"github.com/sonify-k8s/sonify-k8s/internal/ui"
)

var (
	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Background(ColorSurfaceBg).
			Padding(1, 2)

	helpTitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true).
			Width(14)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)
)

// renderHelpOverlay centers the key table, followed by the scale of the
// selected metric, over the dashboard.
func (m Model) renderHelpOverlay() string {
	lines := []string{helpTitleStyle.Render("Keyboard Shortcuts"), ""}
	for _, b := range keymap {
		lines = append(lines, helpKeyStyle.Render(b.label)+helpDescStyle.Render(b.desc))
	}
	lines = append(lines, helpKeyStyle.Render("Esc")+helpDescStyle.Render("Close help"))

	if scale := m.selectedScale(); scale != "" {
		lines = append(lines, "", helpTitleStyle.Render("Scale: "+m.Selected()), scale)
	}

	lines = append(lines, "", LabelStyle.Render("Press ? to close"))

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		helpBoxStyle.Render(strings.Join(lines, "\n")),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(ColorDarkBg),
	)
}

// selectedScale renders the selected metric's notes as color swatches, low
// to high, or "" when the metric isn't in the table.
func (m Model) selectedScale() string {
	mc, ok := m.table.Get(m.Selected())
	if !ok {
		return ""
	}
	names := make([]string, len(mc.Notes))
	colors := make([]string, len(mc.Notes))
	for i, n := range mc.Notes {
		names[i] = n.Name
		colors[i] = sonify.GetColor(mc.Colors, i)
	}
	return ui.RenderSwatches(names, colors)
}

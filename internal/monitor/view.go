package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sonify-k8s/sonify-k8s/internal/ui"
	"github.com/sonify-k8s/sonify-k8s/internal/util"
)

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderCards())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader renders the dashboard header with poll and audio state.
func (m Model) renderHeader() string {
	var updateText string
	switch since := m.SecondsSinceUpdate(); since {
	case -1:
		updateText = "never"
	case 0:
		updateText = "just now"
	default:
		updateText = fmt.Sprintf("%ds ago", since)
	}

	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render(ui.SymbolNote + " sonify-k8s")

	stats := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(fmt.Sprintf(" | %s | %s | audio %s | last update %s",
			m.namespace, util.Count(len(m.metrics), "metric", "metrics"), m.audioState(), updateText))

	return HeaderStyle.Render(title+stats) + " " + m.indicator.View()
}

func (m Model) audioState() string {
	switch {
	case m.muter == nil:
		return "off"
	case m.muter.Muted():
		return "muted"
	default:
		return "on"
	}
}

// renderCards renders the grid of metric cards.
func (m Model) renderCards() string {
	if len(m.metrics) == 0 {
		return LabelStyle.Render("No metrics enabled")
	}

	cardWidth := m.calculateCardWidth()

	cards := make([]string, 0, len(m.metrics))
	for i, metric := range m.metrics {
		cards = append(cards, m.renderCard(metric, cardWidth, i == m.selected))
	}

	return m.layoutCards(cards, cardWidth)
}

// calculateCardWidth determines the card width based on terminal width.
func (m Model) calculateCardWidth() int {
	if m.width == 0 || m.width >= 80 {
		return 36
	}
	return max(m.width-4, 20)
}

// layoutCards arranges cards in rows based on terminal width.
func (m Model) layoutCards(cards []string, cardWidth int) string {
	cardsPerRow := 1
	if m.width > 0 {
		// border, padding and margin
		cardsPerRow = max(m.width/(cardWidth+5), 1)
	}

	var rows []string
	for i := 0; i < len(cards); i += cardsPerRow {
		end := min(i+cardsPerRow, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderFooter renders the keyboard help footer.
func (m Model) renderFooter() string {
	hints := []string{
		"q quit",
		"r refresh",
		"m mute",
		"↑↓ select",
		"? help",
	}

	return FooterStyle.Render(strings.Join(hints, " | "))
}

package monitor

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sonify-k8s/sonify-k8s/internal/sonify"
	"github.com/sonify-k8s/sonify-k8s/internal/ui"
	"github.com/sonify-k8s/sonify-k8s/internal/util"
)

// renderCard renders one metric as a bordered card in its mapped color.
func (m Model) renderCard(metric string, width int, selected bool) string {
	lineWidth := width - 2 // horizontal padding

	cfg, _ := m.table.Get(metric)
	title := cfg.DisplayName
	if title == "" {
		title = metric
	}

	reading, hasReading := m.readings[metric]

	var lines []string
	titleLine := TitleStyle.Render(util.Truncate(title, lineWidth-6))
	if hasReading {
		badge := ui.BadgeStyle(reading.Mapping.Color).Render(reading.Mapping.Note)
		gap := max(lineWidth-lipgloss.Width(titleLine)-lipgloss.Width(badge), 1)
		titleLine += strings.Repeat(" ", gap) + badge
	}
	lines = append(lines, titleLine)

	if hasReading {
		value := ValueStyle.Render(strings.TrimSpace(fmt.Sprintf("%.2f %s", reading.Value, reading.Unit)))
		freq := LabelStyle.Render(fmt.Sprintf("%d Hz", reading.Mapping.Frequency))
		gap := max(lineWidth-lipgloss.Width(value)-lipgloss.Width(freq), 1)
		lines = append(lines, value+strings.Repeat(" ", gap)+freq)

		lo, hi := m.sparkRange(metric)
		lines = append(lines, ui.RenderSparkline(m.history.Get(metric, lineWidth), lineWidth, lo, hi, reading.Mapping.Color))

		if extra := formatExtra(reading.Extra); extra != "" {
			lines = append(lines, LabelStyle.Render(util.Truncate(extra, lineWidth)))
		}
	} else if _, failed := m.errors[metric]; !failed {
		lines = append(lines, LabelStyle.Render("waiting for data"))
	}

	if errMsg, failed := m.errors[metric]; failed {
		lines = append(lines, ErrorStyle.Render(ui.SymbolFail+" "+util.Truncate(errMsg, lineWidth-2)))
	}

	color := ""
	if hasReading {
		color = reading.Mapping.Color
	}
	return cardStyle(color, selected).Width(width).Render(strings.Join(lines, "\n"))
}

// sparkRange returns the fixed value range a metric's sparkline is drawn
// against: note indexes for discrete metrics, 0 to the ceiling otherwise.
func (m Model) sparkRange(metric string) (lo, hi float64) {
	if sonify.Discrete(metric) {
		cfg, _ := m.table.Get(metric)
		return 0, float64(max(len(cfg.Notes)-1, 1))
	}
	return 0, sonify.Ceiling(metric)
}

// formatExtra renders extra fields as "k=v k=v" in key order.
func formatExtra(extra map[string]string) string {
	if len(extra) == 0 {
		return ""
	}
	parts := make([]string, 0, len(extra))
	for _, k := range slices.Sorted(maps.Keys(extra)) {
		parts = append(parts, k+"="+extra[k])
	}
	return strings.Join(parts, " ")
}

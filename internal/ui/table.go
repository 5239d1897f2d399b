package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn is one column of a rendered table.
type TableColumn struct {
	Title string
	Width int
}

// RenderSimpleTable renders rows under a ruled header, unfocused so no row
// is highlighted. Cells are truncated by rune width, so keep escape
// sequences out of them. It returns "" when there are no rows.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}
	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(tableRows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.Foreground(ColorPrimary)
	// Unfocused tables still style the cursor row.
	s.Selected = lipgloss.NewStyle().Foreground(ColorPrimary)
	t.SetStyles(s)

	return t.View()
}

// RenderSwatches renders each label as a badge in its paired hex color.
// Labels without a color use the neutral badge.
func RenderSwatches(labels, colors []string) string {
	parts := make([]string, len(labels))
	for i, label := range labels {
		hex := ""
		if i < len(colors) {
			hex = colors[i]
		}
		parts[i] = BadgeStyle(hex).Render(label)
	}
	return strings.Join(parts, " ")
}

// DoctorCheckRow is one line of the doctor report.
type DoctorCheckRow struct {
	Status     string // "pass", "warn" or "fail"
	Category   string
	Message    string
	Suggestion string // shown under warn and fail rows
}

var doctorGlyphs = map[string]struct {
	symbol string
	color  lipgloss.Color
}{
	"pass": {SymbolSuccess, ColorSuccess},
	"warn": {"!", ColorWarning},
	"fail": {SymbolFail, ColorError},
}

// RenderDoctorTable renders check results under their category headings,
// categories in first-seen order.
func RenderDoctorTable(rows []DoctorCheckRow) string {
	if len(rows) == 0 {
		return "No checks to display"
	}

	heading := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	muted := MutedStyle()

	var order []string
	byCategory := make(map[string][]DoctorCheckRow)
	for _, row := range rows {
		if _, seen := byCategory[row.Category]; !seen {
			order = append(order, row.Category)
		}
		byCategory[row.Category] = append(byCategory[row.Category], row)
	}

	var b strings.Builder
	for _, cat := range order {
		b.WriteString(heading.Render(cat) + "\n")
		for _, row := range byCategory[cat] {
			icon := muted.Render(SymbolPending)
			if g, ok := doctorGlyphs[row.Status]; ok {
				icon = lipgloss.NewStyle().Foreground(g.color).Render(g.symbol)
			}
			b.WriteString("  " + icon + " " + row.Message + "\n")
			if row.Suggestion != "" && row.Status != "pass" {
				b.WriteString("    " + muted.Render(row.Suggestion) + "\n")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

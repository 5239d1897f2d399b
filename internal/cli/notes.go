package cli

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/sonify-k8s/sonify-k8s/internal/sonify"
	"github.com/sonify-k8s/sonify-k8s/internal/ui"
	"github.com/spf13/cobra"
)

// notesCmd prints the sound/color table.
var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Print the note and color for every metric bucket",
	Long: `Print the sound/color table: each metric's scale, the value range it
covers and the color of every note.

Continuous metrics split 0..ceiling into equal buckets, one per note.
Discrete metrics (pod_status, node_pressure) use the value as the note index.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return notesCommand(cmd.OutOrStdout(), sonify.DefaultTable())
	},
}

var notesColumns = []ui.TableColumn{
	{Title: "Metric", Width: 18},
	{Title: "Name", Width: 18},
	{Title: "Unit", Width: 8},
	{Title: "Scale", Width: 12},
	{Title: "Notes", Width: 6},
}

func notesCommand(out io.Writer, table *sonify.Table) error {
	names := table.Names()

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		mc, _ := table.Get(name)
		rows = append(rows, []string{
			name,
			mc.DisplayName,
			mc.Unit,
			scaleRange(name, len(mc.Notes)),
			strconv.Itoa(len(mc.Notes)),
		})
	}

	fmt.Fprintln(out, ui.RenderSimpleTable(notesColumns, rows))
	fmt.Fprintln(out)

	for _, name := range names {
		mc, _ := table.Get(name)
		fmt.Fprintf(out, "%-18s %s\n", name, noteSwatches(mc))
		if status := statusLegend(mc.StatusMap); status != "" {
			fmt.Fprintf(out, "%-18s %s\n", "", ui.MutedStyle().Render(status))
		}
	}
	return nil
}

// scaleRange describes the values a metric's notes cover.
func scaleRange(metric string, notes int) string {
	if sonify.Discrete(metric) {
		return fmt.Sprintf("index 0-%d", max(notes-1, 0))
	}
	return fmt.Sprintf("0-%g", sonify.Ceiling(metric))
}

// noteSwatches renders each note as "C4 262Hz" on the color the mapper
// would pick for it.
func noteSwatches(mc sonify.MetricConfig) string {
	labels := make([]string, len(mc.Notes))
	colors := make([]string, len(mc.Notes))
	for i, n := range mc.Notes {
		labels[i] = fmt.Sprintf("%s %dHz", n.Name, n.Frequency)
		colors[i] = sonify.GetColor(mc.Colors, i)
	}
	return ui.RenderSwatches(labels, colors)
}

// statusLegend lists status names by note index, e.g. "Running=0 Pending=1".
func statusLegend(statusMap map[string]int) string {
	if len(statusMap) == 0 {
		return ""
	}

	type entry struct {
		name  string
		index int
	}
	entries := make([]entry, 0, len(statusMap))
	for name, idx := range statusMap {
		entries = append(entries, entry{name, idx})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(a.index, b.index); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})

	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%s=%d", e.name, e.index)
	}
	return strings.Join(parts, " ")
}

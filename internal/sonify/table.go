// Package sonify maps cluster metric values onto musical notes and colors.
//
// Every metric has a fixed scale of notes and a matching color palette. A
// value is bucketed into an index on that scale, and the note and color at
// the index become the Mapping that the audio and display layers render.
package sonify

import (
	"maps"
	"slices"
	"sync"
)

// Metric names known to the default table.
const (
	MetricCPUUsage        = "cpu_usage"
	MetricMemoryUsage     = "memory_usage"
	MetricPodStatus       = "pod_status"
	MetricHTTPLatency     = "http_latency"
	MetricErrorsPerSecond = "errors_per_second"
	MetricReplicas        = "replicas"
	MetricNodePressure    = "node_pressure"
)

// Note is a pitch with its scientific name, e.g. {440, "A4"}.
type Note struct {
	Frequency int
	Name      string
}

// MetricConfig describes how one metric sounds and looks.
type MetricConfig struct {
	DisplayName string
	Unit        string
	Notes       []Note
	Colors      []string

	// StatusMap documents how the cluster source turns a status string into
	// a note index. It is informational; the mapper only sees numbers.
	StatusMap map[string]int
}

func (c MetricConfig) clone() MetricConfig {
	out := c
	out.Notes = slices.Clone(c.Notes)
	out.Colors = slices.Clone(c.Colors)
	if c.StatusMap != nil {
		out.StatusMap = maps.Clone(c.StatusMap)
	}
	return out
}

// Table is a read-only registry of metric configurations.
type Table struct {
	metrics map[string]MetricConfig
}

// NewTable builds a table from the given configurations. The input is
// copied, so later changes to it do not affect the table.
func NewTable(metrics map[string]MetricConfig) *Table {
	t := &Table{metrics: make(map[string]MetricConfig, len(metrics))}
	for name, cfg := range metrics {
		t.metrics[name] = cfg.clone()
	}
	return t
}

// Get returns a copy of the configuration for name.
func (t *Table) Get(name string) (MetricConfig, bool) {
	cfg, ok := t.metrics[name]
	if !ok {
		return MetricConfig{}, false
	}
	return cfg.clone(), true
}

// Names returns the metric names in sorted order.
func (t *Table) Names() []string {
	return slices.Sorted(maps.Keys(t.metrics))
}

// Len returns the number of metrics in the table.
func (t *Table) Len() int {
	return len(t.metrics)
}

// DefaultTable returns the built-in table. It is built once and shared.
var DefaultTable = sync.OnceValue(func() *Table {
	return NewTable(defaultMetrics())
})

func defaultMetrics() map[string]MetricConfig {
	return map[string]MetricConfig{
		MetricCPUUsage: {
			DisplayName: "CPU Usage",
			Unit:        "%",
			Notes: []Note{
				{262, "C4"}, {294, "D4"}, {330, "E4"}, {349, "F4"},
				{392, "G4"}, {440, "A4"}, {494, "B4"}, {523, "C5"},
			},
			Colors: []string{
				"#88E0EF", "#39C0ED", "#218380", "#126E82",
				"#145DA0", "#0F4C75", "#3282B8", "#118AB2",
			},
		},
		MetricMemoryUsage: {
			DisplayName: "Memory Usage",
			Unit:        "%",
			Notes: []Note{
				{277, "C#4"}, {311, "D#4"}, {349, "F4"}, {370, "F#4"},
				{415, "G#4"}, {466, "A#4"}, {523, "C5"}, {554, "C#5"},
			},
			Colors: []string{
				"#D4F5FF", "#A7E9FF", "#56CCF2", "#29ADB2",
				"#247BA0", "#1E3A8A", "#2A9D8F", "#81B29A",
			},
		},
		MetricPodStatus: {
			DisplayName: "Pod Status",
			Unit:        "",
			Notes: []Note{
				{220, "A3"}, {262, "C4"}, {330, "E4"}, {392, "G4"},
			},
			Colors: []string{
				"#86EF7D", "#22C55E", "#16A34A", "#065F46",
			},
			StatusMap: map[string]int{
				"Running":   3,
				"Pending":   1,
				"Succeeded": 3,
				"Failed":    0,
				"Unknown":   0,
			},
		},
		MetricHTTPLatency: {
			DisplayName: "HTTP Latency",
			Unit:        "ms",
			Notes: []Note{
				{294, "D4"}, {330, "E4"}, {370, "F#4"}, {415, "G#4"},
				{466, "A#4"}, {523, "C5"}, {587, "D5"}, {659, "E5"},
			},
			Colors: []string{
				"#FFE5D9", "#FFCAD4", "#F4ACB7", "#F46036",
				"#E5383B", "#B22222", "#8B0000", "#DC143C",
			},
		},
		MetricErrorsPerSecond: {
			DisplayName: "Errors/Second",
			Unit:        "err/s",
			Notes: []Note{
				{131, "C3"}, {147, "D3"}, {165, "E3"}, {175, "F3"},
				{196, "G3"}, {220, "A3"}, {247, "B3"}, {262, "C4"},
			},
			Colors: []string{
				"#FFF2CC", "#FFD65E", "#FFA41B", "#F94144",
				"#F3722C", "#F8961E", "#F9C74F", "#90BE6D",
			},
		},
		MetricReplicas: {
			DisplayName: "Replica Count",
			Unit:        "Count",
			Notes: []Note{
				{262, "C4"}, {277, "C#4"}, {294, "D4"}, {311, "D#4"},
				{330, "E4"}, {349, "F4"}, {370, "F#4"}, {392, "G4"},
			},
			Colors: []string{
				"#E0F7FA", "#B2EBF2", "#80DEEA", "#4DD0E1",
				"#26C6DA", "#00BCD4", "#00ACC1", "#0097A7",
			},
		},
		MetricNodePressure: {
			DisplayName: "Node Pressure",
			Unit:        "",
			Notes: []Note{
				{262, "C4"}, {294, "D4"}, {330, "E4"}, {349, "F4"},
			},
			Colors: []string{
				"#FFFFFF", "#F0F4C3", "#D4E157", "#A4A71D",
			},
			StatusMap: map[string]int{
				"False": 0,
				"True":  3,
			},
		},
	}
}

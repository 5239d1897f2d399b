package sonify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable_Contents(t *testing.T) {
	table := DefaultTable()

	assert.Equal(t, 7, table.Len())
	assert.Equal(t, []string{
		MetricCPUUsage,
		MetricErrorsPerSecond,
		MetricHTTPLatency,
		MetricMemoryUsage,
		MetricNodePressure,
		MetricPodStatus,
		MetricReplicas,
	}, table.Names())

	tests := []struct {
		metric      string
		displayName string
		unit        string
		notes       int
		firstNote   Note
		lastColor   string
	}{
		{MetricCPUUsage, "CPU Usage", "%", 8, Note{262, "C4"}, "#118AB2"},
		{MetricMemoryUsage, "Memory Usage", "%", 8, Note{277, "C#4"}, "#81B29A"},
		{MetricPodStatus, "Pod Status", "", 4, Note{220, "A3"}, "#065F46"},
		{MetricHTTPLatency, "HTTP Latency", "ms", 8, Note{294, "D4"}, "#DC143C"},
		{MetricErrorsPerSecond, "Errors/Second", "err/s", 8, Note{131, "C3"}, "#90BE6D"},
		{MetricReplicas, "Replica Count", "Count", 8, Note{262, "C4"}, "#0097A7"},
		{MetricNodePressure, "Node Pressure", "", 4, Note{262, "C4"}, "#A4A71D"},
	}

	for _, tt := range tests {
		t.Run(tt.metric, func(t *testing.T) {
			cfg, ok := table.Get(tt.metric)
			require.True(t, ok)

			assert.Equal(t, tt.displayName, cfg.DisplayName)
			assert.Equal(t, tt.unit, cfg.Unit)
			assert.Len(t, cfg.Notes, tt.notes)
			assert.Len(t, cfg.Colors, tt.notes)
			assert.Equal(t, tt.firstNote, cfg.Notes[0])
			assert.Equal(t, tt.lastColor, cfg.Colors[len(cfg.Colors)-1])

			for _, n := range cfg.Notes {
				assert.Positive(t, n.Frequency)
				assert.NotEmpty(t, n.Name)
			}
			for _, c := range cfg.Colors {
				assert.True(t, strings.HasPrefix(c, "#"))
				assert.Len(t, c, 7)
			}
		})
	}
}

func TestDefaultTable_StatusMaps(t *testing.T) {
	pods, _ := DefaultTable().Get(MetricPodStatus)
	assert.Equal(t, map[string]int{
		"Running": 3, "Pending": 1, "Succeeded": 3, "Failed": 0, "Unknown": 0,
	}, pods.StatusMap)

	nodes, _ := DefaultTable().Get(MetricNodePressure)
	assert.Equal(t, map[string]int{"False": 0, "True": 3}, nodes.StatusMap)

	cpu, _ := DefaultTable().Get(MetricCPUUsage)
	assert.Nil(t, cpu.StatusMap)
}

func TestDefaultTable_BuiltOnce(t *testing.T) {
	assert.Same(t, DefaultTable(), DefaultTable())
}

func TestTable_GetReturnsCopy(t *testing.T) {
	table := DefaultTable()

	cfg, ok := table.Get(MetricPodStatus)
	require.True(t, ok)
	cfg.Notes[0] = Note{1, "X"}
	cfg.Colors[0] = "#000000"
	cfg.StatusMap["Running"] = 0

	again, _ := table.Get(MetricPodStatus)
	assert.Equal(t, Note{220, "A3"}, again.Notes[0])
	assert.Equal(t, "#86EF7D", again.Colors[0])
	assert.Equal(t, 3, again.StatusMap["Running"])
}

func TestTable_GetMissing(t *testing.T) {
	_, ok := DefaultTable().Get("disk_usage")
	assert.False(t, ok)
}

func TestNewTable_CopiesInput(t *testing.T) {
	src := map[string]MetricConfig{
		"x": {Notes: []Note{{100, "G2"}}, Colors: []string{"#010101"}},
	}
	table := NewTable(src)
	src["x"].Notes[0] = Note{1, "changed"}

	cfg, _ := table.Get("x")
	assert.Equal(t, Note{100, "G2"}, cfg.Notes[0])
}

package sonify

import (
	"math"

	"github.com/sonify-k8s/sonify-k8s/internal/errors"
)

// DefaultColor is used when a metric has no colors at all.
const DefaultColor = "#808080"

// Mapping is the note and color selected for one metric value.
type Mapping struct {
	Metric    string
	Index     int
	Frequency int
	Note      string
	Color     string
}

// Ceiling returns the value that maps to the highest note of a continuous
// metric. The floor is always 0.
func Ceiling(metric string) float64 {
	switch metric {
	case MetricHTTPLatency:
		return 500
	case MetricErrorsPerSecond:
		return 10
	case MetricReplicas:
		return 5
	default:
		return 100
	}
}

// Discrete reports whether a metric's value is already a note index rather
// than a quantity to be bucketed.
func Discrete(metric string) bool {
	return metric == MetricPodStatus || metric == MetricNodePressure
}

// MapMetric selects the note and color for value on the named metric's scale.
// A nil table means DefaultTable.
func MapMetric(name string, value float64, table *Table) (Mapping, error) {
	if table == nil {
		table = DefaultTable()
	}
	cfg, ok := table.metrics[name]
	if !ok || len(cfg.Notes) == 0 {
		return Mapping{}, errors.NewUnknownMetric(name)
	}

	last := len(cfg.Notes) - 1

	var index int
	if Discrete(name) {
		index = truncIndex(value)
	} else {
		index = CalculateIndex(value, len(cfg.Notes), 0, Ceiling(name))
	}
	index = min(max(index, 0), last)

	note := cfg.Notes[index]
	return Mapping{
		Metric:    name,
		Index:     index,
		Frequency: note.Frequency,
		Note:      note.Name,
		Color:     GetColor(cfg.Colors, index),
	}, nil
}

// truncIndex converts a status value to an index, truncating toward zero.
func truncIndex(value float64) int {
	if math.IsNaN(value) || value < 0 {
		return 0
	}
	if value > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(value)
}

// CalculateIndex buckets value linearly into [0, n-1] over the range
// [minValue, maxValue]. Values outside the range are clamped and the
// fractional bucket is truncated toward the lower note.
func CalculateIndex(value float64, n int, minValue, maxValue float64) int {
	if maxValue <= minValue || n <= 0 || math.IsNaN(value) {
		return 0
	}

	clamped := math.Max(minValue, math.Min(value, maxValue))
	var normalized float64
	if span := maxValue - minValue; !math.IsInf(span, 1) {
		normalized = (clamped - minValue) / span
	} else {
		// Halving keeps spans wider than MaxFloat64 finite.
		normalized = (clamped/2 - minValue/2) / (maxValue/2 - minValue/2)
	}
	index := int(normalized * float64(n-1))

	return min(max(index, 0), n-1)
}

// GetColor returns colors[index], the last color when index is out of
// range, or DefaultColor when colors is empty.
func GetColor(colors []string, index int) string {
	if index >= 0 && index < len(colors) {
		return colors[index]
	}
	if len(colors) > 0 {
		return colors[len(colors)-1]
	}
	return DefaultColor
}

package ui

import "strings"

// Sparkline block characters representing 8 vertical levels (lowest to highest).
const sparklineBlocks = "▁▂▃▄▅▆▇█"

var sparklineBlockRunes = []rune(sparklineBlocks)

// RenderSparkline draws the most recent width values of data, scaled to the
// fixed range [lo, hi], in the given hex color. A range with hi <= lo falls
// back to the data's own min and max.
func RenderSparkline(data []float64, width int, lo, hi float64, hex string) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}

	if len(data) > width {
		data = data[len(data)-width:]
	}

	if hi <= lo {
		lo, hi = data[0], data[0]
		for _, v := range data {
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}

	var sb strings.Builder
	sb.Grow(len(data) * 3)

	numLevels := len(sparklineBlockRunes)
	span := hi - lo

	for _, v := range data {
		level := numLevels / 2
		if span > 0 {
			level = int((v - lo) / span * float64(numLevels-1))
			level = min(max(level, 0), numLevels-1)
		}
		sb.WriteRune(sparklineBlockRunes[level])
	}

	return HexStyle(hex).Render(sb.String())
}

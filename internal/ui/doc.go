// Package ui provides terminal output helpers for sonify-k8s.
//
// # Metric colors
//
// Every reading carries a "#RRGGBB" color from the sound table. Colorize
// wraps a line in a 24-bit ANSI foreground sequence for that color:
//
//	ui.Colorize("CPU Usage: 42.00 %", "#126E82", true)
//	// "\x1b[38;2;18;110;130mCPU Usage: 42.00 %\x1b[0m"
//
// HexStyle and BadgeStyle expose the same colors as Lip Gloss styles for the
// dashboard and the notes table.
//
// # Components
//
//	RenderHeader      - product banner with version and target namespace
//	RenderSparkline   - recent history of a metric in block characters
//	RenderSimpleTable - static Bubbles table for CLI output
//	RenderDoctorTable - grouped pass/warn/fail diagnostics
//	PollIndicator     - dashboard header widget for the running tick
//	RenderSwatches    - note labels as badges in their colors
//
// Semantic colors (ColorSuccess, ColorError, ...) are ANSI codes so they
// adapt to the terminal theme.
package ui

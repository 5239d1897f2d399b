package ui

// Status and note glyphs.
const (
	SymbolSuccess  = "✓"
	SymbolFail     = "✗"
	SymbolPending  = "○"
	SymbolComplete = "●"
	SymbolNote     = "♪"
)

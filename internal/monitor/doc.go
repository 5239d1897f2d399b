// Package monitor implements the full-screen sonification dashboard.
//
// The dashboard drives the same fetch, map, play and print pipeline as the
// plain poll loop, but renders each metric as a card colored by its mapped
// color, with the selected note, its frequency and a sparkline of recent
// values.
//
// # Architecture
//
// The package uses the Bubble Tea framework (Model-Update-View):
//
//   - Model: readings per metric, failure messages, history, selection
//   - Update: keystrokes, tick events, finished polls
//   - View: header, card grid, footer and the optional help overlay
//
// # Message Flow
//
//  1. tickMsg fires every poll interval
//  2. collectCmd runs one Ticker.Tick off the UI goroutine
//  3. readingsMsg arrives with the tick's readings and failures
//  4. View re-renders the cards
//
// A tick that arrives while a poll is still running is dropped.
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit
//	r           - Poll now
//	m           - Toggle mute
//	j/k, ↑/↓    - Move the selection
//	?           - Toggle help overlay (Esc closes it)
package monitor

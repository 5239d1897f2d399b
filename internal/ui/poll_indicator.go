package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PollFrames is the spinner animation shown while a tick is running.
var PollFrames = spinner.Spinner{
	Frames: []string{"◐", "◓", "◑", "◒"},
	FPS:    time.Second / 10,
}

// PollState is where the dashboard's current tick is.
type PollState int

const (
	PollIdle PollState = iota
	PollRunning
	PollDone
	PollPartial // finished with at least one failed metric
)

// PollIndicator is the header widget that animates while a tick runs and
// then reports how the tick went. It is meant to be embedded in a larger
// Bubble Tea model.
type PollIndicator struct {
	spinner spinner.Model

	State   PollState
	Tick    int
	Metrics int
	Failed  int
	Started time.Time
	Took    time.Duration
}

// NewPollIndicator returns an idle indicator.
func NewPollIndicator() PollIndicator {
	sp := spinner.New()
	sp.Spinner = PollFrames
	sp.Style = lipgloss.NewStyle().Foreground(ColorSecondary)
	return PollIndicator{spinner: sp}
}

// Init returns the spinner's first frame command.
func (p PollIndicator) Init() tea.Cmd {
	return p.spinner.Tick
}

// Update advances the animation. Frames outside a running tick are ignored
// so the spinner stops scheduling itself.
func (p PollIndicator) Update(msg tea.Msg) (PollIndicator, tea.Cmd) {
	if p.State != PollRunning {
		return p, nil
	}
	tick, ok := msg.(spinner.TickMsg)
	if !ok {
		return p, nil
	}
	var cmd tea.Cmd
	p.spinner, cmd = p.spinner.Update(tick)
	return p, cmd
}

// Begin marks tick n as running over the given number of metrics.
func (p *PollIndicator) Begin(n, metrics int) tea.Cmd {
	p.State = PollRunning
	p.Tick = n
	p.Metrics = metrics
	p.Failed = 0
	p.Started = time.Now()
	p.Took = 0
	return p.spinner.Tick
}

// Finish records the outcome of the running tick.
func (p *PollIndicator) Finish(failed int) {
	if !p.Started.IsZero() {
		p.Took = time.Since(p.Started)
	}
	p.Failed = failed
	if failed > 0 {
		p.State = PollPartial
	} else {
		p.State = PollDone
	}
}

// View renders the indicator, e.g. "◐ tick 4" or "✓ tick 4 · 7/7 in 85ms".
func (p PollIndicator) View() string {
	muted := lipgloss.NewStyle().Foreground(ColorMuted)

	switch p.State {
	case PollRunning:
		return p.spinner.View() + " " + fmt.Sprintf("tick %d", p.Tick)
	case PollDone, PollPartial:
		symbol := lipgloss.NewStyle().Foreground(ColorSuccess).Render(SymbolComplete)
		if p.State == PollPartial {
			symbol = lipgloss.NewStyle().Foreground(ColorError).Render(SymbolFail)
		}
		ok := max(p.Metrics-p.Failed, 0)
		return fmt.Sprintf("%s tick %d %s", symbol, p.Tick,
			muted.Render(fmt.Sprintf("· %d/%d in %s", ok, p.Metrics, formatDuration(p.Took))))
	default:
		return muted.Render(SymbolPending + " waiting")
	}
}

// formatDuration renders d as "850ms" below one second and "1.2s" above.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

package monitor

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sonify-k8s/sonify-k8s/internal/sonifier"
	"github.com/sonify-k8s/sonify-k8s/internal/sonify"
	"github.com/sonify-k8s/sonify-k8s/internal/ui"
)

// Options configures a dashboard Model.
type Options struct {
	Metrics   []string
	Namespace string
	Interval  time.Duration
	Table     *sonify.Table

	// Muter is optional; without one the mute key does nothing.
	Muter Muter

	// Failures is optional and should also be registered as a runner observer.
	Failures *FailureLog

	HistorySize int
}

// Model is the Bubble Tea model for the sonification dashboard.
type Model struct {
	ctx       context.Context
	ticker    Ticker
	muter     Muter
	failures  *FailureLog
	table     *sonify.Table
	namespace string

	metrics  []string
	readings map[string]sonifier.Reading
	errors   map[string]string
	history  *History

	selected   int
	width      int
	height     int
	interval   time.Duration
	lastUpdate time.Time
	polls      int
	quitting   bool
	showHelp   bool

	collecting bool
	indicator  ui.PollIndicator
}

// tickMsg signals a periodic poll.
type tickMsg time.Time

// readingsMsg carries the outcome of one poll.
type readingsMsg struct {
	readings []sonifier.Reading
	failures map[string]string
	time     time.Time
}

// NewModel creates a dashboard that polls ticker every opts.Interval. The
// first poll starts as soon as the program runs.
func NewModel(ctx context.Context, ticker Ticker, opts Options) Model {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	if opts.Table == nil {
		opts.Table = sonify.DefaultTable()
	}

	indicator := ui.NewPollIndicator()
	indicator.Begin(1, len(opts.Metrics))

	return Model{
		ctx:        ctx,
		ticker:     ticker,
		muter:      opts.Muter,
		failures:   opts.Failures,
		table:      opts.Table,
		namespace:  opts.Namespace,
		metrics:    append([]string(nil), opts.Metrics...),
		readings:   make(map[string]sonifier.Reading),
		errors:     make(map[string]string),
		history:    NewHistory(opts.HistorySize),
		interval:   opts.Interval,
		collecting: true,
		indicator:  indicator,
	}
}

// Init starts the first poll, the refresh timer and the poll indicator.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.collectCmd(),
		m.tickCmd(),
		m.indicator.Init(),
	)
}

// Update handles incoming messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if handled, cmd := m.HandleKeyMsg(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		// Polls never overlap; a tick during a running poll is dropped.
		if m.collecting {
			return m, m.tickCmd()
		}
		return m, tea.Batch(m.startPoll(), m.tickCmd())

	case readingsMsg:
		m.applyReadings(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.indicator, cmd = m.indicator.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.renderDashboard()
}

// startPoll marks a poll in flight and returns the commands that run it.
func (m *Model) startPoll() tea.Cmd {
	m.collecting = true
	return tea.Batch(m.indicator.Begin(m.polls+1, len(m.metrics)), m.collectCmd())
}

// collectCmd runs one tick of the pipeline off the UI goroutine.
func (m Model) collectCmd() tea.Cmd {
	ctx, ticker, failures := m.ctx, m.ticker, m.failures
	return func() tea.Msg {
		readings := ticker.Tick(ctx)
		msg := readingsMsg{readings: readings, time: time.Now()}
		if failures != nil {
			msg.failures = failures.Snapshot()
		}
		return msg
	}
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) applyReadings(msg readingsMsg) {
	for _, r := range msg.readings {
		m.readings[r.Metric] = r
		m.history.Push(r.Metric, r.Value)
	}
	if msg.failures != nil {
		m.errors = msg.failures
	}

	m.collecting = false
	m.lastUpdate = msg.time
	m.polls++

	m.indicator.Finish(len(m.errors))
}

// Status returns what a metric's card currently shows.
func (m Model) Status(metric string) CardStatus {
	if _, failed := m.errors[metric]; failed {
		return CardFailed
	}
	if _, ok := m.readings[metric]; ok {
		return CardOK
	}
	return CardWaiting
}

// Reading returns the latest reading for a metric.
func (m Model) Reading(metric string) (sonifier.Reading, bool) {
	r, ok := m.readings[metric]
	return r, ok
}

// Selected returns the metric under the selection cursor.
func (m Model) Selected() string {
	if m.selected < 0 || m.selected >= len(m.metrics) {
		return ""
	}
	return m.metrics[m.selected]
}

// Polls returns the number of completed polls.
func (m Model) Polls() int {
	return m.polls
}

// SecondsSinceUpdate returns the number of seconds since the last poll
// finished, or -1 before the first one.
func (m Model) SecondsSinceUpdate() int {
	if m.lastUpdate.IsZero() {
		return -1
	}
	return int(time.Since(m.lastUpdate).Seconds())
}

// Run starts the dashboard in the alternate screen and blocks until the
// user quits or ctx is cancelled.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if stderrors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

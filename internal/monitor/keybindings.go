package monitor

import tea "github.com/charmbracelet/bubbletea"

// keyAction mutates the model in response to a key and may return a command.
type keyAction func(m *Model) tea.Cmd

// binding ties the keys that trigger an action to its help text.
type binding struct {
	keys   []string
	label  string // as shown in the help overlay
	desc   string
	action keyAction
}

// keymap is the dashboard's key table. It drives both dispatch and the help
// overlay, so a key listed here is always documented.
var keymap = []binding{
	{[]string{"q", "ctrl+c"}, "q / Ctrl+C", "Quit", quit},
	{[]string{"r"}, "r", "Poll now", refresh},
	{[]string{"m"}, "m", "Mute / unmute tones", toggleMute},
	{[]string{"up", "k"}, "up / k", "Select previous metric", selectPrev},
	{[]string{"down", "j"}, "down / j", "Select next metric", selectNext},
	{[]string{"?"}, "?", "Toggle this help", toggleHelp},
}

// HandleKeyMsg runs the action bound to msg. It reports whether the key was
// bound. While the help overlay is open, esc closes it.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	if m.showHelp && key == "esc" {
		m.showHelp = false
		return true, nil
	}

	for _, b := range keymap {
		for _, k := range b.keys {
			if k == key {
				return true, b.action(m)
			}
		}
	}
	return false, nil
}

func quit(m *Model) tea.Cmd {
	m.quitting = true
	return tea.Quit
}

// refresh starts a poll unless one is already running.
func refresh(m *Model) tea.Cmd {
	if m.collecting {
		return nil
	}
	return m.startPoll()
}

func toggleMute(m *Model) tea.Cmd {
	if m.muter != nil {
		m.muter.SetMuted(!m.muter.Muted())
	}
	return nil
}

func selectPrev(m *Model) tea.Cmd {
	if m.selected > 0 {
		m.selected--
	}
	return nil
}

func selectNext(m *Model) tea.Cmd {
	if m.selected < len(m.metrics)-1 {
		m.selected++
	}
	return nil
}

func toggleHelp(m *Model) tea.Cmd {
	m.showHelp = !m.showHelp
	return nil
}

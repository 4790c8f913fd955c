package main

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.followOutput = m.viewport.AtBottom()
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	case commandDoneMsg:
		return m.handleCommandDone(msg)
	case configReloadedMsg:
		m.entries = append(m.entries, entry{notice: true, output: "config reloaded from " + msg.path})
		m.refreshViewport()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if handled, cmd := m.handleViewportKey(msg); handled {
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c":
		if m.running {
			m.cancel()
			return m, nil
		}
		m.input.SetValue("")
		m.historyIdx = len(m.history)
		return m, nil
	case "ctrl+d":
		if !m.running && m.input.Value() == "" {
			return m, tea.Quit
		}
		return m, nil
	case "ctrl+l":
		if !m.running {
			m.entries = nil
			m.refreshViewport()
		}
		return m, nil
	case "up":
		m.recallHistory(-1)
		return m, nil
	case "down":
		m.recallHistory(1)
		return m, nil
	case "enter":
		if m.running {
			return m, nil
		}
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m tuiModel) submit() (tea.Model, tea.Cmd) {
	line := m.input.Value()
	m.input.SetValue("")
	m.draft = ""
	m.followOutput = true

	if strings.TrimSpace(line) == "" {
		m.entries = append(m.entries, entry{prompt: m.prompt})
		m.refreshViewport()
		return m, nil
	}

	m.history = append(m.history, line)
	m.historyIdx = len(m.history)
	m.entries = append(m.entries, entry{prompt: m.prompt, command: line, pending: true})
	m.refreshViewport()
	return m, m.runCommand(line)
}

func (m tuiModel) handleCommandDone(msg commandDoneMsg) (tea.Model, tea.Cmd) {
	m.running = false
	m.cancel = nil

	if m.cleared.Swap(false) {
		m.entries = nil
	} else if n := len(m.entries); n > 0 && m.entries[n-1].pending {
		m.entries[n-1].pending = false
		m.entries[n-1].code = msg.code
		m.entries[n-1].output = msg.output
	}

	if !m.sess.IsRunning() {
		m.farewell = msg.output
		return m, tea.Quit
	}

	m.prompt = m.sess.DisplayPrompt()
	m.resize()
	return m, nil
}

// recallHistory moves through the lines submitted in this session. The line
// being typed is kept as a draft and restored past the newest entry.
func (m *tuiModel) recallHistory(step int) {
	if len(m.history) == 0 {
		return
	}
	if m.historyIdx == len(m.history) {
		m.draft = m.input.Value()
	}
	idx := m.historyIdx + step
	if idx < 0 || idx > len(m.history) {
		return
	}
	m.historyIdx = idx
	if idx == len(m.history) {
		m.input.SetValue(m.draft)
	} else {
		m.input.SetValue(m.history[idx])
	}
	m.input.CursorEnd()
}

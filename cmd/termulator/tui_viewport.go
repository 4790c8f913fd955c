package main

import (
	tea "github.com/charmbracelet/bubbletea"
)

func (m *tuiModel) adjustViewport() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.viewport.Width = max(10, m.width)
	// input line, two dividers and the hint
	m.viewport.Height = max(1, m.height-4)
}

func (m *tuiModel) refreshViewport() {
	m.viewport.SetContent(renderEntries(m.entries, m.viewport.Width))
	if m.followOutput {
		m.viewport.GotoBottom()
	}
}

func (m *tuiModel) handleViewportKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.followOutput = m.viewport.AtBottom()
		return true, cmd
	case "home":
		if m.input.Value() != "" {
			return false, nil
		}
		m.viewport.GotoTop()
		m.followOutput = false
		return true, nil
	case "end":
		if m.input.Value() != "" {
			return false, nil
		}
		m.viewport.GotoBottom()
		m.followOutput = true
		return true, nil
	default:
		return false, nil
	}
}

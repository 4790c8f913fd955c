package main

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	divider := dividerStyle.Render(strings.Repeat("-", m.width))
	hintText := "Enter run | Up/Down history | PgUp/PgDn scroll | Ctrl+L clear | Ctrl+D quit"
	if m.running {
		hintText = "running... (Ctrl+C interrupt)"
	}
	hint := lipgloss.PlaceHorizontal(m.width, lipgloss.Left, hintStyle.Render(hintText))

	inputLine := renderPrompt(m.prompt) + m.input.View()

	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), divider, inputLine, divider, hint)
}

var _ tea.Model = tuiModel{}

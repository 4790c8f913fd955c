package main

import "github.com/charmbracelet/lipgloss"

var (
	userStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	dirStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	commandStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	outputStyle      = lipgloss.NewStyle()
	failureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	noticeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dividerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	hintStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	inputTextStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	placeholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

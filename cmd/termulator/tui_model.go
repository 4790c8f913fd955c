package main

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mainbong/termulator/internal/config"
	"github.com/mainbong/termulator/internal/logger"
	"github.com/mainbong/termulator/internal/session"
)

// entry is one submitted line and what it printed
type entry struct {
	prompt  string
	command string
	code    int
	output  string
	pending bool
	notice  bool
}

type commandDoneMsg struct {
	code   int
	output string
}

type configReloadedMsg struct {
	path string
}

type tuiModel struct {
	ctx          context.Context
	sess         *session.Session
	input        textinput.Model
	viewport     viewport.Model
	entries      []entry
	history      []string
	historyIdx   int
	draft        string
	prompt       string
	running      bool
	cancel       context.CancelFunc
	cleared      *atomic.Bool
	farewell     string
	followOutput bool
	width        int
	height       int
}

func runTUI(ctx context.Context) error {
	cleared := &atomic.Bool{}
	sess, err := newSession(session.WithClearFunc(func() {
		cleared.Store(true)
	}))
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	model := newTUIModel(ctx, sess, cleared)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	go func() {
		err := cfg.Watch(ctx, func(updated *config.Config) {
			applyConfig(updated)
			program.Send(configReloadedMsg{path: updated.Path()})
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("config watcher stopped: %v", err)
		}
	}()

	final, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(tuiModel); ok && m.farewell != "" {
		fmt.Println(m.farewell)
	}
	logger.Info("session %s ended after %d commands", sess.ID(), len(sess.History()))
	return nil
}

func newTUIModel(ctx context.Context, sess *session.Session, cleared *atomic.Bool) tuiModel {
	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = "type a command, help lists built-ins"
	input.CharLimit = 0
	input.TextStyle = inputTextStyle
	input.PlaceholderStyle = placeholderStyle
	input.Focus()

	return tuiModel{
		ctx:          ctx,
		sess:         sess,
		input:        input,
		viewport:     viewport.New(0, 0),
		prompt:       sess.DisplayPrompt(),
		cleared:      cleared,
		followOutput: true,
	}
}

func (m tuiModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *tuiModel) resize() {
	m.input.Width = max(10, m.width-lipgloss.Width(m.prompt)-1)
	m.adjustViewport()
	m.refreshViewport()
}

// runCommand runs the line off the update loop. At most one command is in
// flight per session.
func (m *tuiModel) runCommand(line string) tea.Cmd {
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	m.running = true
	sess := m.sess
	return func() tea.Msg {
		defer cancel()
		code, output := sess.RunCommandContext(ctx, line)
		return commandDoneMsg{code: code, output: output}
	}
}

package main

import (
	"bytes"
	"context"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mainbong/termulator/internal/session"
	"github.com/mainbong/termulator/internal/sysinfo"
	"github.com/mainbong/termulator/internal/terminal"
)

type stubRunner struct {
	code   int
	output string
}

func (r stubRunner) Run(ctx context.Context, name string, args []string, dir string, env map[string]string) (int, string) {
	return r.code, r.output
}

func newTestModel(t *testing.T) tuiModel {
	t.Helper()
	cleared := &atomic.Bool{}
	sess := newCmdTestSession(t, session.WithClearFunc(func() { cleared.Store(true) }))
	m := newTUIModel(context.Background(), sess, cleared)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(tuiModel)
}

func newCmdTestSession(t *testing.T, opts ...session.Option) *session.Session {
	t.Helper()
	dir := t.TempDir()
	base := []session.Option{
		session.WithDirectory(dir),
		session.WithEnvironment(map[string]string{"HOME": dir, "USER": "tester"}),
		session.WithHostname("box"),
		session.WithSysInfo(sysinfo.NewMockProvider()),
		session.WithRunner(stubRunner{code: 127, output: "command not found"}),
	}
	sess, err := session.New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("session.New() failed: %v", err)
	}
	return sess
}

// submit types line, presses enter and feeds the finished command back in
func submit(t *testing.T, m tuiModel, line string) (tuiModel, tea.Cmd) {
	t.Helper()
	m.input.SetValue(line)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(tuiModel)
	if cmd == nil {
		return m, nil
	}
	if !m.running {
		t.Fatalf("Expected model to be running after submitting %q", line)
	}
	updated, cmd = m.Update(cmd())
	return updated.(tuiModel), cmd
}

func TestTUI_RunsCommandAndRecordsOutput(t *testing.T) {
	m := newTestModel(t)

	m, cmd := submit(t, m, "echo hello world")
	if cmd != nil {
		t.Fatalf("Expected no follow-up command, got %T", cmd)
	}
	if m.running {
		t.Fatal("Expected model to be idle after the command finished")
	}
	if len(m.entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(m.entries))
	}
	got := m.entries[0]
	if got.command != "echo hello world" || got.output != "hello world" || got.code != 0 || got.pending {
		t.Errorf("Unexpected entry %+v", got)
	}
	if !strings.Contains(renderEntries(m.entries, 80), "hello world") {
		t.Error("Expected rendered scrollback to contain the output")
	}
}

func TestTUI_FailedCommandKeepsExitCode(t *testing.T) {
	m := newTestModel(t)

	m, _ = submit(t, m, "nosuchcommand")
	if m.entries[0].code != 127 || m.entries[0].output != "command not found" {
		t.Errorf("Unexpected entry %+v", m.entries[0])
	}
}

func TestTUI_BlankLineDoesNotRun(t *testing.T) {
	m := newTestModel(t)

	m, cmd := submit(t, m, "   ")
	if cmd != nil || m.running {
		t.Fatal("Expected a blank line not to start a command")
	}
	if len(m.entries) != 1 || m.entries[0].command != "" {
		t.Errorf("Expected a bare prompt entry, got %+v", m.entries)
	}
	if len(m.history) != 0 {
		t.Errorf("Expected blank line to stay out of history, got %v", m.history)
	}
}

func TestTUI_PromptFollowsDirectoryChange(t *testing.T) {
	m := newTestModel(t)

	m, _ = submit(t, m, "mkdir work")
	m, _ = submit(t, m, "cd work")
	if !strings.HasSuffix(m.prompt, ":work$ ") {
		t.Errorf("Expected prompt to end with :work$ , got %q", m.prompt)
	}
}

func TestTUI_ClearEmptiesScrollback(t *testing.T) {
	m := newTestModel(t)

	m, _ = submit(t, m, "echo one")
	m, _ = submit(t, m, "clear")
	if len(m.entries) != 0 {
		t.Errorf("Expected empty scrollback after clear, got %+v", m.entries)
	}
	if m.cleared.Load() {
		t.Error("Expected clear flag to be reset")
	}
}

func TestTUI_ExitQuits(t *testing.T) {
	m := newTestModel(t)

	m, cmd := submit(t, m, "exit")
	if cmd == nil {
		t.Fatal("Expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("Expected tea.QuitMsg")
	}
	if m.farewell != "Goodbye!" {
		t.Errorf("Expected farewell Goodbye!, got %q", m.farewell)
	}
}

func TestTUI_HistoryRecall(t *testing.T) {
	m := newTestModel(t)

	m, _ = submit(t, m, "echo first")
	m, _ = submit(t, m, "echo second")
	m.input.SetValue("draft")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = updated.(tuiModel)
	if m.input.Value() != "echo second" {
		t.Fatalf("Expected echo second, got %q", m.input.Value())
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = updated.(tuiModel)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = updated.(tuiModel)
	if m.input.Value() != "echo first" {
		t.Fatalf("Expected to stop at echo first, got %q", m.input.Value())
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(tuiModel)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(tuiModel)
	if m.input.Value() != "draft" {
		t.Errorf("Expected draft restored, got %q", m.input.Value())
	}
}

func TestTUI_CtrlCClearsInputWhenIdle(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("half typed")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = updated.(tuiModel)
	if cmd != nil {
		t.Fatal("Expected ctrl+c not to quit")
	}
	if m.input.Value() != "" {
		t.Errorf("Expected input cleared, got %q", m.input.Value())
	}
}

func TestTUI_CtrlCCancelsRunningCommand(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("echo hi")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(tuiModel)
	if cmd == nil {
		t.Fatal("Expected a command")
	}

	canceled := false
	m.cancel = func() { canceled = true }
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = updated.(tuiModel)
	if !canceled {
		t.Error("Expected running command to be canceled")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !updated.(tuiModel).running {
		t.Error("Expected enter to be ignored while a command runs")
	}
}

func TestTUI_CtrlDQuitsOnEmptyInput(t *testing.T) {
	m := newTestModel(t)

	m.input.SetValue("x")
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlD}); cmd != nil {
		t.Fatal("Expected ctrl+d to be ignored with pending input")
	}

	m.input.SetValue("")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	if cmd == nil {
		t.Fatal("Expected ctrl+d to quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("Expected tea.QuitMsg")
	}
}

func TestTUI_ConfigReloadNotice(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(configReloadedMsg{path: "/tmp/config.yaml"})
	m = updated.(tuiModel)
	if len(m.entries) != 1 || !m.entries[0].notice {
		t.Fatalf("Expected a notice entry, got %+v", m.entries)
	}
	if !strings.Contains(m.entries[0].output, "/tmp/config.yaml") {
		t.Errorf("Expected notice to name the file, got %q", m.entries[0].output)
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  []string
	}{
		{"", 5, []string{""}},
		{"abc", 5, []string{"abc"}},
		{"abcdefgh", 4, []string{"abcd", "efgh"}},
		{"abcdefghi", 4, []string{"abcd", "efgh", "i"}},
		{"a\tb", 0, []string{"a\tb"}},
	}

	for _, tt := range tests {
		got := wrapText(tt.text, tt.width)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("wrapText(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestRunLineMode(t *testing.T) {
	sess := newCmdTestSession(t)
	var out bytes.Buffer
	printer := terminal.NewPrinter(&out, false)

	in := strings.NewReader("echo one\n\nnosuch\nexit\necho never\n")
	if err := runLineMode(context.Background(), sess, in, printer); err != nil {
		t.Fatalf("runLineMode() failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{"tester@box:", "one\n", "command not found\n", "Goodbye!\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected output to contain %q, got %q", want, got)
		}
	}
	if strings.Contains(got, "never") {
		t.Errorf("Expected input after exit to be ignored, got %q", got)
	}
	if sess.IsRunning() {
		t.Error("Expected session to be stopped")
	}
}

func TestRunLineMode_StopsAtEOF(t *testing.T) {
	sess := newCmdTestSession(t)
	var out bytes.Buffer

	if err := runLineMode(context.Background(), sess, strings.NewReader("echo last"), terminal.NewPrinter(&out, false)); err != nil {
		t.Fatalf("runLineMode() failed: %v", err)
	}
	if !strings.Contains(out.String(), "last\n") {
		t.Errorf("Expected unterminated final line to run, got %q", out.String())
	}
	if got := sess.History(); len(got) != 1 || got[0] != "echo last" {
		t.Errorf("Unexpected history %v", got)
	}
}

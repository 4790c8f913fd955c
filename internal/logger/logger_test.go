package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestLogger(t *testing.T, level LogLevel) (*Logger, *bytes.Buffer) {
	t.Helper()
	l, err := NewLogger(t.TempDir(), level)
	if err != nil {
		t.Fatalf("NewLogger() failed: %v", err)
	}
	t.Cleanup(func() { l.Close() })

	console := &bytes.Buffer{}
	l.console = console
	l.now = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC) }
	return l, console
}

func readLog(t *testing.T, l *Logger) string {
	t.Helper()
	content, err := os.ReadFile(l.Path())
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	return string(content)
}

func TestNewLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")

	l, err := NewLogger(dir, INFO)
	if err != nil {
		t.Fatalf("NewLogger() failed: %v", err)
	}
	defer l.Close()

	if l.GetLogDir() != dir {
		t.Errorf("Expected logDir %s, got %s", dir, l.GetLogDir())
	}
	base := filepath.Base(l.Path())
	if !strings.HasPrefix(base, "termulator_") || !strings.HasSuffix(base, ".log") {
		t.Errorf("Unexpected log file name %s", base)
	}

	target, err := os.Readlink(filepath.Join(dir, "latest.log"))
	if err != nil {
		t.Fatalf("Expected latest.log symlink: %v", err)
	}
	if target != base {
		t.Errorf("Expected latest.log -> %s, got %s", base, target)
	}
}

func TestNewLogger_UnwritableDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	if _, err := NewLogger(filepath.Join(file, "logs"), INFO); err == nil {
		t.Fatal("Expected an error when the log dir is below a file")
	}
}

func TestLogger_LineFormat(t *testing.T) {
	l, _ := newTestLogger(t, DEBUG)

	l.Info("session started in %s", "/tmp")
	l.Scope("session 1234").Debug("%q exited with %d", "ls", 0)

	got := readLog(t, l)
	want := "[2024-05-01 12:30:00] INFO: session started in /tmp\n" +
		"[2024-05-01 12:30:00] DEBUG: [session 1234] \"ls\" exited with 0\n"
	if got != want {
		t.Errorf("Unexpected log content:\n%s\nwant:\n%s", got, want)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  []string
		skip  []string
	}{
		{DEBUG, []string{"debug line", "info line", "warn line", "error line"}, nil},
		{INFO, []string{"info line", "warn line", "error line"}, []string{"debug line"}},
		{WARN, []string{"warn line", "error line"}, []string{"debug line", "info line"}},
		{ERROR, []string{"error line"}, []string{"debug line", "info line", "warn line"}},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			l, _ := newTestLogger(t, tt.level)
			l.Debug("debug line")
			l.Info("info line")
			l.Warn("warn line")
			l.Error("error line")

			content := readLog(t, l)
			for _, line := range tt.want {
				if !strings.Contains(content, line) {
					t.Errorf("Expected %q in log", line)
				}
			}
			for _, line := range tt.skip {
				if strings.Contains(content, line) {
					t.Errorf("Expected %q to be filtered", line)
				}
			}
		})
	}
}

func TestLogger_ConsoleEcho(t *testing.T) {
	l, console := newTestLogger(t, DEBUG)

	l.Info("quiet")
	l.Warn("loud")
	if strings.Contains(console.String(), "quiet") {
		t.Error("Expected INFO to stay off the console")
	}
	if !strings.Contains(console.String(), "WARN: loud") {
		t.Errorf("Expected WARN on the console, got %q", console.String())
	}

	l.DisableConsole()
	l.Error("after disable")
	if strings.Contains(console.String(), "after disable") {
		t.Error("Expected console echo to stop after DisableConsole")
	}
	if !strings.Contains(readLog(t, l), "after disable") {
		t.Error("Expected the file to keep receiving messages")
	}
}

func TestLogger_SetLevel(t *testing.T) {
	l, _ := newTestLogger(t, ERROR)

	l.Info("hidden message")
	l.SetLevel(DEBUG)
	l.Info("visible message")

	content := readLog(t, l)
	if strings.Contains(content, "hidden message") {
		t.Error("Expected INFO message to be filtered before SetLevel")
	}
	if !strings.Contains(content, "visible message") {
		t.Error("Expected INFO message after SetLevel(DEBUG)")
	}
}

func TestLogger_Close(t *testing.T) {
	l, _ := newTestLogger(t, INFO)

	if err := l.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("Second Close() should not error, got: %v", err)
	}

	l.Error("dropped")
	if strings.Contains(readLog(t, l), "dropped") {
		t.Error("Expected messages after Close to be dropped")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   DEBUG,
		"INFO":    INFO,
		"warn":    WARN,
		"warning": WARN,
		" error ": ERROR,
		"bogus":   INFO,
		"":        INFO,
	}
	for input, want := range tests {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	dir := t.TempDir()
	if err := Init(dir, INFO); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	t.Cleanup(func() {
		Close()
		defaultLogger = nil
	})
	DisableConsole()

	scope := For("config")
	Debug("package debug")
	Info("package info")
	SetLevel(DEBUG)
	Debug("package debug after SetLevel")
	scope.Warn("reload failed")

	content := readLog(t, defaultLogger)
	for _, want := range []string{"INFO: package info", "DEBUG: package debug after SetLevel", "WARN: [config] reload failed"} {
		if !strings.Contains(content, want) {
			t.Errorf("Expected %q in log, got:\n%s", want, content)
		}
	}
	if strings.Contains(content, "DEBUG: package debug\n") {
		t.Error("Expected first DEBUG message to be filtered")
	}
}

func TestPackageLevelFunctions_NoInit(t *testing.T) {
	defaultLogger = nil

	// These should not panic
	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")
	For("session").Error("scoped message")
	SetLevel(DEBUG)
	DisableConsole()
	if err := Close(); err != nil {
		t.Errorf("Close() without Init returned %v", err)
	}
}

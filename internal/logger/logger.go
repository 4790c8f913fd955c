package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the log level
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

// ParseLevel converts a config value ("debug", "info", "warn", "error") to a LogLevel.
// Unknown values fall back to INFO.
func ParseLevel(value string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

const (
	fileTimeLayout = "2006-01-02_15-04-05"
	lineTimeLayout = "2006-01-02 15:04:05"
	latestLink     = "latest.log"
)

// Logger writes leveled lines to a per-run file. WARN and above are echoed
// to the console until DisableConsole is called.
type Logger struct {
	mu      sync.Mutex
	level   LogLevel
	file    *os.File
	console io.Writer
	logDir  string
	path    string
	now     func() time.Time
}

var defaultLogger *Logger

// Init initializes the default logger
func Init(logDir string, level LogLevel) error {
	logger, err := NewLogger(logDir, level)
	if err != nil {
		return err
	}
	defaultLogger = logger
	return nil
}

// NewLogger opens termulator_<timestamp>.log in logDir and points latest.log at it
func NewLogger(logDir string, level LogLevel) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(logDir, fmt.Sprintf("termulator_%s.log", time.Now().Format(fileTimeLayout)))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	// latest.log is best effort
	link := filepath.Join(logDir, latestLink)
	_ = os.Remove(link)
	_ = os.Symlink(filepath.Base(path), link)

	return &Logger{
		level:   level,
		file:    file,
		console: os.Stderr,
		logDir:  logDir,
		path:    path,
		now:     time.Now,
	}, nil
}

func (l *Logger) write(level LogLevel, scope, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level || l.file == nil {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: ", l.now().Format(lineTimeLayout), level)
	if scope != "" {
		fmt.Fprintf(&b, "[%s] ", scope)
	}
	fmt.Fprintf(&b, format, args...)
	b.WriteByte('\n')
	line := b.String()

	io.WriteString(l.file, line)
	if level >= WARN && l.console != nil {
		io.WriteString(l.console, line)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.write(DEBUG, "", format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.write(INFO, "", format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.write(WARN, "", format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.write(ERROR, "", format, args...)
}

// SetLevel changes the minimum level that is written
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// DisableConsole stops echoing WARN and ERROR messages to stderr
func (l *Logger) DisableConsole() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.console = nil
}

// Close closes the log file. Later messages are dropped.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// GetLogDir returns the log directory
func (l *Logger) GetLogDir() string {
	return l.logDir
}

// Path returns the file this logger writes to
func (l *Logger) Path() string {
	return l.path
}

// Scope tags every line with a name, such as a session or component. It
// resolves the default logger on each call, so a Scope created before Init
// starts writing once Init has run.
type Scope struct {
	name   string
	logger *Logger
}

// For returns a Scope on the default logger
func For(name string) Scope {
	return Scope{name: name}
}

// Scope returns a Scope bound to l
func (l *Logger) Scope(name string) Scope {
	return Scope{name: name, logger: l}
}

func (s Scope) target() *Logger {
	if s.logger != nil {
		return s.logger
	}
	return defaultLogger
}

func (s Scope) log(level LogLevel, format string, args ...interface{}) {
	if l := s.target(); l != nil {
		l.write(level, s.name, format, args...)
	}
}

// Debug logs a debug message in this scope
func (s Scope) Debug(format string, args ...interface{}) { s.log(DEBUG, format, args...) }

// Info logs an info message in this scope
func (s Scope) Info(format string, args ...interface{}) { s.log(INFO, format, args...) }

// Warn logs a warning in this scope
func (s Scope) Warn(format string, args ...interface{}) { s.log(WARN, format, args...) }

// Error logs an error in this scope
func (s Scope) Error(format string, args ...interface{}) { s.log(ERROR, format, args...) }

// Package-level functions for default logger

// Debug logs a debug message using the default logger
func Debug(format string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Debug(format, args...)
	}
}

// Info logs an info message using the default logger
func Info(format string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Info(format, args...)
	}
}

// Warn logs a warning message using the default logger
func Warn(format string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Warn(format, args...)
	}
}

// Error logs an error message using the default logger
func Error(format string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Error(format, args...)
	}
}

// SetLevel changes the level of the default logger
func SetLevel(level LogLevel) {
	if defaultLogger != nil {
		defaultLogger.SetLevel(level)
	}
}

// DisableConsole stops console echo on the default logger
func DisableConsole() {
	if defaultLogger != nil {
		defaultLogger.DisableConsole()
	}
}

// Close closes the default logger
func Close() error {
	if defaultLogger != nil {
		return defaultLogger.Close()
	}
	return nil
}

// Package session implements the command interpreter: one Session holds the working
// directory, environment and history of a terminal connection and executes command
// lines against them, either through the built-in table or as external processes.
package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/muesli/termenv"

	"github.com/mainbong/termulator/internal/filesystem"
	"github.com/mainbong/termulator/internal/history"
	"github.com/mainbong/termulator/internal/logger"
	"github.com/mainbong/termulator/internal/parser"
	"github.com/mainbong/termulator/internal/shell"
	"github.com/mainbong/termulator/internal/sysinfo"
)

// ExternalRunner executes commands that are not built-ins
type ExternalRunner interface {
	Run(ctx context.Context, name string, args []string, dir string, env map[string]string) (int, string)
}

// Session is the state of one terminal connection. A Session is not safe for
// concurrent use: commands are executed one at a time.
type Session struct {
	id      string
	dir     string
	prevDir string
	env     map[string]string
	history *history.Manager
	running bool
	log     logger.Scope

	hostname    string
	topInterval time.Duration
	mirrorEnv   bool

	fs        filesystem.FileSystem
	runner    ExternalRunner
	tokenizer parser.Tokenizer
	sys       sysinfo.Provider
	clear     func()
}

// Option configures a Session
type Option func(*Session)

// WithDirectory sets the initial working directory
func WithDirectory(dir string) Option {
	return func(s *Session) { s.dir = dir }
}

// WithEnvironment seeds the session environment instead of the host process environment
func WithEnvironment(env map[string]string) Option {
	return func(s *Session) {
		s.env = make(map[string]string, len(env))
		for key, value := range env {
			s.env[key] = value
		}
	}
}

// WithFileSystem replaces the filesystem used by built-in commands
func WithFileSystem(fs filesystem.FileSystem) Option {
	return func(s *Session) { s.fs = fs }
}

// WithRunner replaces the external process runner
func WithRunner(runner ExternalRunner) Option {
	return func(s *Session) { s.runner = runner }
}

// WithSysInfo replaces the provider behind ps, top, df and free
func WithSysInfo(provider sysinfo.Provider) Option {
	return func(s *Session) { s.sys = provider }
}

// WithClearFunc replaces the clear-screen side effect of the clear built-in
func WithClearFunc(clear func()) Option {
	return func(s *Session) { s.clear = clear }
}

// WithTopInterval sets the CPU sampling interval used by top
func WithTopInterval(interval time.Duration) Option {
	return func(s *Session) { s.topInterval = interval }
}

// WithHostEnvMirror makes export also set variables in the host process environment
func WithHostEnvMirror(enabled bool) Option {
	return func(s *Session) { s.mirrorEnv = enabled }
}

// WithHostname overrides the host name shown in the prompt
func WithHostname(hostname string) Option {
	return func(s *Session) { s.hostname = hostname }
}

// New creates a session. Unless overridden, the working directory and the
// environment are seeded from the host process.
func New(opts ...Option) (*Session, error) {
	id := uuid.NewString()
	s := &Session{
		id:          id,
		log:         logger.For("session " + id[:8]),
		history:     history.NewManager(),
		running:     true,
		topInterval: time.Second,
		fs:          filesystem.NewOSFileSystem(),
		runner:      shell.NewRunner(),
		tokenizer:   parser.NewWordTokenizer(),
		sys:         sysinfo.NewHostProvider(),
		clear: func() {
			termenv.NewOutput(os.Stdout).ClearScreen()
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.env == nil {
		s.env = environFromHost()
	}

	if s.dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		s.dir = wd
	}
	dir, err := filepath.Abs(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}
	info, err := s.fs.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid working directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("invalid working directory: %s is not a directory", dir)
	}
	s.dir = dir

	if s.hostname == "" {
		if hostname, err := os.Hostname(); err == nil {
			s.hostname = hostname
		} else {
			s.hostname = "localhost"
		}
	}

	return s, nil
}

func environFromHost() map[string]string {
	env := make(map[string]string)
	for _, pair := range os.Environ() {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}
	return env
}

// ID returns the unique identifier of the session
func (s *Session) ID() string {
	return s.id
}

// CurrentDirectory returns the absolute working directory
func (s *Session) CurrentDirectory() string {
	return s.dir
}

// PreviousDirectory returns the directory that "cd -" returns to, or "" if cd never succeeded
func (s *Session) PreviousDirectory() string {
	return s.prevDir
}

// History returns a snapshot of every recorded command line in invocation order
func (s *Session) History() []string {
	return s.history.Commands()
}

// Environment returns a copy of the session environment
func (s *Session) Environment() map[string]string {
	env := make(map[string]string, len(s.env))
	for key, value := range s.env {
		env[key] = value
	}
	return env
}

// IsRunning reports false once the exit built-in has run
func (s *Session) IsRunning() bool {
	return s.running
}

// DisplayPrompt formats the prompt as user@host:dir$
func (s *Session) DisplayPrompt() string {
	user := s.env["USER"]
	if user == "" {
		user = "user"
	}
	base := filepath.Base(s.dir)
	if base == string(filepath.Separator) || base == "." {
		base = "/"
	}
	return fmt.Sprintf("%s@%s:%s$ ", user, s.hostname, base)
}

// resolve turns an operand into an absolute, cleaned path relative to the working directory
func (s *Session) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(s.dir, path)
}

func (s *Session) sortedEnv() []string {
	lines := make([]string, 0, len(s.env))
	for key, value := range s.env {
		lines = append(lines, key+"="+value)
	}
	sort.Strings(lines)
	return lines
}

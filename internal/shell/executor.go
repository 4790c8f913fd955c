package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mainbong/termulator/internal/logger"
)

var runLog = logger.For("runner")

// Runner invokes executables that are not built-in commands
type Runner struct {
	mu              sync.RWMutex
	timeout         time.Duration
	commandExecutor CommandExecutor
}

// NewRunner creates a new external process runner
func NewRunner() *Runner {
	return NewRunnerWithCommandExecutor(NewOSCommandExecutor())
}

// NewRunnerWithCommandExecutor creates a runner with a custom CommandExecutor (for testing)
func NewRunnerWithCommandExecutor(executor CommandExecutor) *Runner {
	return &Runner{
		commandExecutor: executor,
	}
}

// SetTimeout sets the maximum run time of a child process. Zero disables the limit.
func (r *Runner) SetTimeout(timeout time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeout = timeout
}

// GetTimeout returns the current child process timeout
func (r *Runner) GetTimeout() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.timeout
}

// Run spawns name with args inside dir using exactly env as the child's environment.
// Stdout and stderr are captured and concatenated, stdout first.
func (r *Runner) Run(ctx context.Context, name string, args []string, dir string, env map[string]string) (int, string) {
	path, ok := Lookup(name, dir, env["PATH"])
	if !ok {
		return 127, fmt.Sprintf("%s: command not found", name)
	}

	if timeout := r.GetTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	runLog.Debug("spawn %s %v (dir=%s)", path, args, dir)
	started := time.Now()
	result, err := r.commandExecutor.Execute(ctx, CommandSpec{
		Path: path,
		Name: name,
		Args: args,
		Dir:  dir,
		Env:  EnvList(env),
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 127, fmt.Sprintf("%s: command not found", name)
		}
		runLog.Warn("spawn %s failed: %v", name, err)
		return 1, fmt.Sprintf("error executing %s: %v", name, err)
	}

	output := string(result.Stdout) + string(result.Stderr)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		output += fmt.Sprintf("%s: timed out after %s", name, time.Since(started).Round(time.Millisecond))
	}
	runLog.Debug("%s exited with %d", name, result.ExitCode)
	return result.ExitCode, output
}

// Lookup resolves name to an executable path. Names containing a slash are resolved
// against dir; bare names are searched in the PATH list in order.
func Lookup(name, dir, pathList string) (string, bool) {
	if name == "" {
		return "", false
	}

	if strings.ContainsRune(name, '/') {
		candidate := name
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(dir, candidate)
		}
		return candidate, isExecutable(candidate)
	}

	for _, entry := range filepath.SplitList(pathList) {
		if entry == "" {
			entry = dir
		} else if !filepath.IsAbs(entry) {
			entry = filepath.Join(dir, entry)
		}
		candidate := filepath.Join(entry, name)
		if isExecutable(candidate) {
			return candidate, true
		}
	}

	return "", false
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode()&0111 != 0
}

// EnvList materializes an environment map into sorted KEY=VALUE pairs
func EnvList(env map[string]string) []string {
	list := make([]string, 0, len(env))
	for key, value := range env {
		list = append(list, key+"="+value)
	}
	sort.Strings(list)
	return list
}

package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"syscall"
)

// ErrNotFound is returned when the executable cannot be found or invoked
var ErrNotFound = errors.New("command not found")

// CommandSpec describes one process to spawn
type CommandSpec struct {
	Path string   // resolved executable path
	Name string   // name as typed, used as argv[0]
	Args []string // arguments without argv[0]
	Dir  string   // working directory
	Env  []string // KEY=VALUE pairs, replaces the host environment entirely
}

// Result holds the outcome of a finished process
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// CommandExecutor abstracts process execution for testability
type CommandExecutor interface {
	Execute(ctx context.Context, spec CommandSpec) (Result, error)
}

// OSCommandExecutor implements CommandExecutor using os/exec
type OSCommandExecutor struct{}

// NewOSCommandExecutor creates a new OSCommandExecutor instance
func NewOSCommandExecutor() *OSCommandExecutor {
	return &OSCommandExecutor{}
}

func (e *OSCommandExecutor) Execute(ctx context.Context, spec CommandSpec) (Result, error) {
	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...)
	cmd.Args = append([]string{spec.Name}, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = spec.Env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitCode(exitErr)
		return result, nil
	}

	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, fs.ErrPermission) || errors.Is(err, syscall.ENOEXEC) {
		return result, fmt.Errorf("%s: %w", spec.Name, ErrNotFound)
	}

	return result, err
}

// exitCode maps a signalled child to 128+signal the way shells report it
func exitCode(exitErr *exec.ExitError) int {
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal())
	}
	return exitErr.ExitCode()
}

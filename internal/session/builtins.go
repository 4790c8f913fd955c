package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
)

// Handler implements one built-in command
type Handler func(ctx context.Context, s *Session, args []string) (int, string)

// Builtin is an entry of the built-in command table
type Builtin struct {
	Name  string
	Usage string
	Run   Handler
}

var builtins map[string]Builtin

func init() {
	table := []Builtin{
		{Name: "cd", Usage: "cd [DIR | -]", Run: cmdCd},
		{Name: "pwd", Usage: "pwd", Run: cmdPwd},
		{Name: "ls", Usage: "ls [-a] [-l] [PATH...]", Run: cmdLs},
		{Name: "mkdir", Usage: "mkdir [-p] DIR...", Run: cmdMkdir},
		{Name: "rmdir", Usage: "rmdir DIR...", Run: cmdRmdir},
		{Name: "rm", Usage: "rm [-r] [-f] PATH...", Run: cmdRm},
		{Name: "cp", Usage: "cp [-r] SOURCE... DEST", Run: cmdCp},
		{Name: "mv", Usage: "mv SOURCE... DEST", Run: cmdMv},
		{Name: "touch", Usage: "touch FILE...", Run: cmdTouch},
		{Name: "find", Usage: "find [PATH] [-name PATTERN] [-type f|d]", Run: cmdFind},
		{Name: "cat", Usage: "cat FILE...", Run: cmdCat},
		{Name: "echo", Usage: "echo [ARG...]", Run: cmdEcho},
		{Name: "grep", Usage: "grep [-i] [-v] PATTERN FILE...", Run: cmdGrep},
		{Name: "wc", Usage: "wc FILE...", Run: cmdWc},
		{Name: "head", Usage: "head [-n COUNT] FILE...", Run: cmdHead},
		{Name: "tail", Usage: "tail [-n COUNT] FILE...", Run: cmdTail},
		{Name: "ps", Usage: "ps", Run: cmdPs},
		{Name: "kill", Usage: "kill [-SIGNAL | -s SIGNAL] PID...", Run: cmdKill},
		{Name: "top", Usage: "top", Run: cmdTop},
		{Name: "df", Usage: "df", Run: cmdDf},
		{Name: "free", Usage: "free", Run: cmdFree},
		{Name: "history", Usage: "history", Run: cmdHistory},
		{Name: "clear", Usage: "clear", Run: cmdClear},
		{Name: "exit", Usage: "exit", Run: cmdExit},
		{Name: "env", Usage: "env", Run: cmdEnv},
		{Name: "export", Usage: "export [KEY=VALUE...]", Run: cmdExport},
		{Name: "which", Usage: "which COMMAND...", Run: cmdWhich},
		{Name: "help", Usage: "help", Run: cmdHelp},
	}

	builtins = make(map[string]Builtin, len(table))
	for _, b := range table {
		builtins[b.Name] = b
	}
}

func lookupBuiltin(name string) (Builtin, bool) {
	b, ok := builtins[name]
	return b, ok
}

// IsBuiltin reports whether name is handled inside the session
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

// BuiltinNames returns the names of every built-in command, sorted
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func cmdHelp(ctx context.Context, s *Session, args []string) (int, string) {
	lines := []string{"Built-in commands:"}
	for _, name := range BuiltinNames() {
		lines = append(lines, "  "+builtins[name].Usage)
	}
	lines = append(lines, "Anything else is run as an external program found on PATH.")
	return 0, strings.Join(lines, "\n")
}

// newFlagSet returns a silent flag set for a built-in; errors are reported by the caller
func newFlagSet(name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.SortFlags = false
	return flags
}

// parseFlags parses args and converts a parse failure into a command result
func parseFlags(name string, flags *pflag.FlagSet, args []string) (int, string, bool) {
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0, fmt.Sprintf("Usage: %s\n%s", builtins[name].Usage, strings.TrimRight(flags.FlagUsages(), "\n")), false
		}
		return 1, fmt.Sprintf("%s: %v", name, err), false
	}
	return 0, "", true
}

var errBinaryFile = errors.New("binary file")

// describe renders a filesystem error the way coreutils phrase it
func describe(err error) string {
	switch {
	case errors.Is(err, errBinaryFile):
		return "Binary file"
	case errors.Is(err, syscall.ENOTEMPTY):
		return "Directory not empty"
	case errors.Is(err, fs.ErrNotExist):
		return "No such file or directory"
	case errors.Is(err, fs.ErrPermission):
		return "Permission denied"
	case errors.Is(err, fs.ErrExist):
		return "File exists"
	case errors.Is(err, syscall.ENOTDIR):
		return "Not a directory"
	case errors.Is(err, syscall.EISDIR):
		return "Is a directory"
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}
	return err.Error()
}

// fail formats "<cmd>: <operand>: <reason>" with exit code 1
func fail(cmd, operand string, err error) (int, string) {
	return 1, fmt.Sprintf("%s: %s: %s", cmd, operand, describe(err))
}

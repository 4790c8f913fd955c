package session

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
)

const (
	msgSyntaxError        = "syntax error in command"
	msgMultipleRedirect   = "syntax error: multiple redirection not supported"
	redirectionOutputMode = 0644
)

// RunCommand executes one command line and returns its exit code and combined output
func (s *Session) RunCommand(line string) (int, string) {
	return s.RunCommandContext(context.Background(), line)
}

// RunCommandContext is RunCommand with a context that bounds external processes
// and system sampling. A line containing a single '>' writes the output of the
// command on its left to the file on its right.
func (s *Session) RunCommandContext(ctx context.Context, line string) (code int, output string) {
	if strings.TrimSpace(line) == "" {
		return 0, ""
	}
	s.history.Add(line)
	defer func() {
		s.log.Debug("%q exited with %d", line, code)
	}()

	switch strings.Count(line, ">") {
	case 0:
		return s.execute(ctx, line)
	case 1:
		return s.redirect(ctx, line)
	default:
		return 1, msgMultipleRedirect
	}
}

func (s *Session) execute(ctx context.Context, line string) (int, string) {
	words, err := s.tokenizer.Tokenize(line)
	if err != nil {
		return 1, msgSyntaxError
	}
	if len(words) == 0 {
		return 0, ""
	}
	return s.dispatch(ctx, words[0], words[1:])
}

// redirect reports success once the output is written, whatever the exit code
// of the command on the left was.
func (s *Session) redirect(ctx context.Context, line string) (int, string) {
	cmdPart, outFile, _ := strings.Cut(line, ">")
	words, err := s.tokenizer.Tokenize(cmdPart)
	if err != nil || len(words) == 0 {
		return 1, msgSyntaxError
	}

	code, output := s.dispatch(ctx, words[0], words[1:])
	target := s.resolve(strings.TrimSpace(outFile))
	if err := s.fs.WriteFile(target, []byte(output), redirectionOutputMode); err != nil {
		s.log.Warn("redirection to %s failed: %v", target, err)
		return 1, fmt.Sprintf("redirection error: %v", err)
	}
	s.log.Debug("wrote %d bytes to %s (inner exit code %d)", len(output), target, code)
	return 0, ""
}

// dispatch runs a built-in or hands the command to the external runner. A panic
// inside either is converted into a failed result so the session survives.
func (s *Session) dispatch(ctx context.Context, name string, args []string) (code int, output string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("%s panicked: %v\n%s", name, r, debug.Stack())
			code, output = 1, fmt.Sprintf("terminal error: %v", r)
		}
	}()

	if builtin, ok := lookupBuiltin(name); ok {
		return builtin.Run(ctx, s, args)
	}
	return s.runner.Run(ctx, name, args, s.dir, s.env)
}

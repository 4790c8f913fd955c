package session

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mainbong/termulator/internal/shell"
)

func cmdEnv(ctx context.Context, s *Session, args []string) (int, string) {
	return 0, strings.Join(s.sortedEnv(), "\n")
}

// cmdExport applies assignments left to right and stops at the first malformed one
func cmdExport(ctx context.Context, s *Session, args []string) (int, string) {
	if len(args) == 0 {
		return cmdEnv(ctx, s, args)
	}

	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return 1, fmt.Sprintf("export: %s: not a valid assignment", arg)
		}
		s.env[key] = value
		if s.mirrorEnv {
			if err := os.Setenv(key, value); err != nil {
				s.log.Warn("failed to mirror %s to host environment: %v", key, err)
			}
		}
	}
	return 0, ""
}

func cmdWhich(ctx context.Context, s *Session, args []string) (int, string) {
	if len(args) == 0 {
		return 1, "which: missing argument"
	}

	code := 0
	lines := make([]string, 0, len(args))
	for _, name := range args {
		path, ok := shell.Lookup(name, s.dir, s.env["PATH"])
		if !ok {
			code = 1
			lines = append(lines, fmt.Sprintf("which: %s: not found", name))
			continue
		}
		lines = append(lines, path)
	}
	return code, strings.Join(lines, "\n")
}

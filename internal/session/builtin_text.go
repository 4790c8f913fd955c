package session

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const defaultLineCount = 10

// readText reads a file as UTF-8 text
func (s *Session) readText(path string) (string, error) {
	data, err := s.fs.ReadFile(s.resolve(path))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", errBinaryFile
	}
	return string(data), nil
}

// splitLines mirrors line iteration over a file: every line keeps its
// terminator and a trailing newline does not produce an extra empty line.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func trimLine(line string) string {
	return strings.TrimRightFunc(line, unicode.IsSpace)
}

func cmdCat(ctx context.Context, s *Session, args []string) (int, string) {
	if len(args) == 0 {
		return 1, "cat: missing file operand"
	}

	var out strings.Builder
	for _, name := range args {
		content, err := s.readText(name)
		if err != nil {
			return fail("cat", name, err)
		}
		out.WriteString(content)
	}
	return 0, out.String()
}

func cmdEcho(ctx context.Context, s *Session, args []string) (int, string) {
	return 0, strings.Join(args, " ")
}

// splitGrepArgs separates leading grep options from the pattern and files.
// The first argument that is not a grep option is the pattern, even when it
// starts with a dash, so "grep -x f.txt" searches for "-x".
func splitGrepArgs(args []string) ([]string, []string) {
	for i, arg := range args {
		if arg == "--" {
			return args[:i+1], args[i+1:]
		}
		if !isGrepOption(arg) {
			return args[:i], args[i:]
		}
	}
	return args, nil
}

func isGrepOption(arg string) bool {
	switch arg {
	case "--ignore-case", "--invert-match", "--help":
		return true
	}
	if len(arg) < 2 || arg[0] != '-' || arg[1] == '-' {
		return false
	}
	return strings.Trim(arg[1:], "ivh") == ""
}

func cmdGrep(ctx context.Context, s *Session, args []string) (int, string) {
	flags := newFlagSet("grep")
	ignoreCase := flags.BoolP("ignore-case", "i", false, "ignore case distinctions")
	invert := flags.BoolP("invert-match", "v", false, "select non-matching lines")
	flagArgs, operands := splitGrepArgs(args)
	if code, out, ok := parseFlags("grep", flags, flagArgs); !ok {
		return code, out
	}
	if len(operands) < 2 {
		return 1, "grep: missing pattern or file"
	}

	pattern, files := operands[0], operands[1:]
	if *ignoreCase {
		pattern = strings.ToLower(pattern)
	}

	var matches []string
	for _, name := range files {
		content, err := s.readText(name)
		if err != nil {
			return fail("grep", name, err)
		}
		for i, line := range splitLines(content) {
			haystack := line
			if *ignoreCase {
				haystack = strings.ToLower(line)
			}
			if strings.Contains(haystack, pattern) != *invert {
				matches = append(matches, fmt.Sprintf("%s:%d:%s", name, i+1, trimLine(line)))
			}
		}
	}
	return 0, strings.Join(matches, "\n")
}

func cmdWc(ctx context.Context, s *Session, args []string) (int, string) {
	if len(args) == 0 {
		return 1, "wc: missing file operand"
	}

	lines := make([]string, 0, len(args))
	for _, name := range args {
		content, err := s.readText(name)
		if err != nil {
			return fail("wc", name, err)
		}
		lines = append(lines, fmt.Sprintf("%8d %8d %8d %s",
			strings.Count(content, "\n"),
			len(strings.Fields(content)),
			utf8.RuneCountInString(content),
			name))
	}
	return 0, strings.Join(lines, "\n")
}

func cmdHead(ctx context.Context, s *Session, args []string) (int, string) {
	return s.sliceLines("head", args, func(lines []string, n int) []string {
		if n < len(lines) {
			return lines[:n]
		}
		return lines
	})
}

func cmdTail(ctx context.Context, s *Session, args []string) (int, string) {
	return s.sliceLines("tail", args, func(lines []string, n int) []string {
		if n < len(lines) {
			return lines[len(lines)-n:]
		}
		return lines
	})
}

func (s *Session) sliceLines(name string, args []string, pick func(lines []string, n int) []string) (int, string) {
	flags := newFlagSet(name)
	count := flags.IntP("lines", "n", defaultLineCount, "number of lines")
	if code, out, ok := parseFlags(name, flags, args); !ok {
		return code, out
	}
	if *count < 0 {
		return 1, fmt.Sprintf("%s: invalid number of lines: '%d'", name, *count)
	}
	if flags.NArg() == 0 {
		return 1, fmt.Sprintf("%s: missing file operand", name)
	}

	var out []string
	for _, file := range flags.Args() {
		content, err := s.readText(file)
		if err != nil {
			return fail(name, file, err)
		}
		for _, line := range pick(splitLines(content), *count) {
			out = append(out, trimLine(line))
		}
	}
	return 0, strings.Join(out, "\n")
}

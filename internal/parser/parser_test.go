package parser

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWordTokenizer_Tokenize(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    []string
		expectedErr error
	}{
		{name: "simple command", input: "echo hello", expected: []string{"echo", "hello"}},
		{name: "flags and paths", input: "ls -la /home/user", expected: []string{"ls", "-la", "/home/user"}},
		{name: "single quoted string", input: "echo 'hello world'", expected: []string{"echo", "hello world"}},
		{name: "double quoted string", input: `echo "hello world"`, expected: []string{"echo", "hello world"}},
		{name: "mixed quotes", input: `echo "hello" 'world'`, expected: []string{"echo", "hello", "world"}},
		{name: "escaped space outside quotes", input: `echo hello\ world`, expected: []string{"echo", "hello world"}},
		{name: "escaped quote in double quotes", input: `echo "hello \"world\""`, expected: []string{"echo", `hello "world"`}},
		{name: "escaped backslash in double quotes", input: `echo "a\\b"`, expected: []string{"echo", `a\b`}},
		{name: "other escapes kept in double quotes", input: `echo "a\nb"`, expected: []string{"echo", `a\nb`}},
		{name: "single quotes are literal", input: `echo 'hello\nworld'`, expected: []string{"echo", `hello\nworld`}},
		{name: "empty input", input: "", expected: []string{}},
		{name: "only whitespace", input: "   \t  \n  ", expected: []string{}},
		{name: "repeated separators", input: "echo    hello     world", expected: []string{"echo", "hello", "world"}},
		{name: "empty quotes produce empty words", input: `echo "" ''`, expected: []string{"echo", "", ""}},
		{name: "adjacent quoted strings", input: `echo "hello"'world'`, expected: []string{"echo", "helloworld"}},
		{name: "quote inside word", input: `grep a"b c"d file`, expected: []string{"grep", "ab cd", "file"}},
		{name: "export assignment", input: `export FOO="bar baz"`, expected: []string{"export", "FOO=bar baz"}},
		{name: "unclosed single quote", input: "echo 'hello", expectedErr: ErrUnclosedQuote},
		{name: "unclosed double quote", input: `echo "hello`, expectedErr: ErrUnclosedQuote},
		{name: "trailing backslash", input: `echo hello\`, expectedErr: ErrUnescapedCharacter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewWordTokenizer().Tokenize(tt.input)

			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("Expected error %v, got %v", tt.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if diff := cmp.Diff(tt.expected, res); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	words, err := Split(`cat "my file.txt"`)
	if err != nil {
		t.Fatalf("Split() failed: %v", err)
	}
	if diff := cmp.Diff([]string{"cat", "my file.txt"}, words); diff != "" {
		t.Errorf("Split mismatch (-want +got):\n%s", diff)
	}
}

package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mainbong/termulator/internal/parser"
)

func TestCommandLine_KeepsWords(t *testing.T) {
	tests := [][]string{
		{"echo", "a  b"},
		{"echo", "it's", `say "hi"`},
		{"grep", "", "f.txt"},
		{"echo", `back\slash`, "tab\there"},
		{"ls", "-la"},
	}

	for _, args := range tests {
		line := commandLine(args)
		got, err := parser.Split(line)
		if err != nil {
			t.Fatalf("Split(%q) failed: %v", line, err)
		}
		if diff := cmp.Diff(args, got); diff != "" {
			t.Errorf("words of %q changed (-want +got):\n%s", line, diff)
		}
	}
}

func TestCommandLine_SingleArgumentIsWholeLine(t *testing.T) {
	if got := commandLine([]string{"echo hello > out.txt"}); got != "echo hello > out.txt" {
		t.Errorf("Expected line unchanged, got %q", got)
	}
	if got := commandLine([]string{"echo", "hi", ">", "out.txt"}); got != "echo hi > out.txt" {
		t.Errorf("Expected plain words joined, got %q", got)
	}
}

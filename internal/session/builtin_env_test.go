package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEnvAndExport(t *testing.T) {
	s := newTestSession(t, WithEnvironment(map[string]string{"B": "2", "A": "1"}))

	code, out := s.RunCommand("env")
	if code != 0 || out != "A=1\nB=2" {
		t.Errorf("Unexpected env (%d, %q)", code, out)
	}
	if _, exported := s.RunCommand("export"); exported != out {
		t.Errorf("Expected bare export to match env, got %q", exported)
	}

	if code, out := s.RunCommand(`export C=3 GREETING="hello world" EMPTY=`); code != 0 {
		t.Fatalf("export failed: %s", out)
	}
	want := map[string]string{"A": "1", "B": "2", "C": "3", "GREETING": "hello world", "EMPTY": ""}
	if diff := cmp.Diff(want, s.Environment()); diff != "" {
		t.Errorf("Environment mismatch (-want +got):\n%s", diff)
	}

	code, out = s.RunCommand("export D=4 broken E=5")
	if code != 1 || out != "export: broken: not a valid assignment" {
		t.Errorf("Unexpected result (%d, %q)", code, out)
	}
	env := s.Environment()
	if env["D"] != "4" {
		t.Error("Expected assignments before the malformed one to apply")
	}
	if _, ok := env["E"]; ok {
		t.Error("Expected assignments after the malformed one to be skipped")
	}

	if code, _ := s.RunCommand("export =value"); code != 1 {
		t.Error("Expected empty key to be rejected")
	}
}

func TestExport_HostMirror(t *testing.T) {
	const key = "TERMULATOR_MIRROR_CHECK"
	t.Setenv(key, "before")

	s := newTestSession(t)
	s.RunCommand("export " + key + "=isolated")
	if os.Getenv(key) != "before" {
		t.Errorf("Expected host environment untouched, got %q", os.Getenv(key))
	}

	mirrored := newTestSession(t, WithHostEnvMirror(true))
	mirrored.RunCommand("export " + key + "=mirrored")
	if os.Getenv(key) != "mirrored" {
		t.Errorf("Expected host environment to be updated, got %q", os.Getenv(key))
	}
}

func TestWhich(t *testing.T) {
	s := newTestSession(t)
	binDir := t.TempDir()
	tool := filepath.Join(binDir, "mytool")
	if err := os.WriteFile(tool, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	s.RunCommand("export PATH=/nonexistent:" + binDir)

	code, out := s.RunCommand("which mytool")
	if code != 0 || out != tool {
		t.Errorf("Expected (0, %q), got (%d, %q)", tool, code, out)
	}

	code, out = s.RunCommand("which mytool not-a-real-tool")
	if code != 1 || out != tool+"\nwhich: not-a-real-tool: not found" {
		t.Errorf("Unexpected result (%d, %q)", code, out)
	}
}

func TestHelp(t *testing.T) {
	s := newTestSession(t)
	code, out := s.RunCommand("help")
	if code != 0 {
		t.Fatalf("help failed: %s", out)
	}
	for _, name := range BuiltinNames() {
		if !strings.Contains(out, "  "+name) {
			t.Errorf("Expected help to mention %s", name)
		}
	}
	if !IsBuiltin("cd") || IsBuiltin("ssh") {
		t.Error("Unexpected IsBuiltin result")
	}
}

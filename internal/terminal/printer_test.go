package terminal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func withNoColor(t *testing.T, fn func()) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		color.NoColor = prev
	})
	fn()
}

func TestPrinter_Result(t *testing.T) {
	withNoColor(t, func() {
		var buf bytes.Buffer
		p := NewPrinter(&buf, true)

		p.Result(0, "one\ntwo")
		p.Result(0, "")
		p.Result(0, "trailing\n")

		if buf.String() != "one\ntwo\ntrailing\n" {
			t.Fatalf("unexpected output %q", buf.String())
		}
	})
}

func TestPrinter_FailureColor(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = prev })

	var buf bytes.Buffer
	p := NewPrinter(&buf, true)
	p.Result(1, "cat: x: No such file or directory")

	if !strings.Contains(buf.String(), "\x1b[31m") {
		t.Fatalf("expected red escape sequence, got %q", buf.String())
	}

	buf.Reset()
	NewPrinter(&buf, false).Result(1, "plain")
	if buf.String() != "plain\n" {
		t.Fatalf("expected uncolored output, got %q", buf.String())
	}
}

func TestPrinter_Prompt(t *testing.T) {
	withNoColor(t, func() {
		var buf bytes.Buffer
		p := NewPrinter(&buf, true)
		p.Prompt("alice@box:src$ ")

		if buf.String() != "alice@box:src$ " {
			t.Fatalf("unexpected prompt %q", buf.String())
		}
		if got := p.FormatPrompt("no prompt here"); got != "no prompt here" {
			t.Fatalf("expected unparseable prompt unchanged, got %q", got)
		}
	})
}

func TestPrinter_Notice(t *testing.T) {
	withNoColor(t, func() {
		var buf bytes.Buffer
		NewPrinter(&buf, true).Notice("config reloaded from %s", "/tmp/c.json")
		if buf.String() != "config reloaded from /tmp/c.json\n" {
			t.Fatalf("unexpected notice %q", buf.String())
		}
	})
}

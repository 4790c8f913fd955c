package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Printer writes prompts and command results for line-mode displays.
type Printer struct {
	writer  io.Writer
	user    *color.Color
	dir     *color.Color
	failure *color.Color
	notice  *color.Color
}

// NewPrinter creates a printer that writes to the provided writer.
func NewPrinter(writer io.Writer, enableColor bool) *Printer {
	p := &Printer{
		writer:  writer,
		user:    color.New(color.FgGreen, color.Bold),
		dir:     color.New(color.FgBlue, color.Bold),
		failure: color.New(color.FgRed),
		notice:  color.New(color.FgHiBlack),
	}
	if !enableColor {
		for _, c := range []*color.Color{p.user, p.dir, p.failure, p.notice} {
			c.DisableColor()
		}
	}
	return p
}

// FormatPrompt colors a "user@host:dir$ " prompt.
func (p *Printer) FormatPrompt(prompt string) string {
	idx := strings.LastIndex(prompt, ":")
	if idx == -1 {
		return prompt
	}
	who, rest := prompt[:idx], prompt[idx+1:]
	dir := strings.TrimSuffix(rest, "$ ")
	if dir == rest {
		return prompt
	}
	return p.user.Sprint(who) + ":" + p.dir.Sprint(dir) + "$ "
}

// Prompt writes the prompt without a trailing newline.
func (p *Printer) Prompt(prompt string) {
	fmt.Fprint(p.writer, p.FormatPrompt(prompt))
}

// Result writes the output of one command. Output of a failed command is shown
// in the failure color. Empty output prints nothing.
func (p *Printer) Result(code int, output string) {
	if output == "" {
		return
	}
	output = strings.TrimSuffix(output, "\n")
	for _, line := range strings.Split(output, "\n") {
		if code != 0 {
			line = p.failure.Sprint(line)
		}
		fmt.Fprintln(p.writer, line)
	}
}

// Notice writes a dimmed informational line.
func (p *Printer) Notice(format string, args ...interface{}) {
	fmt.Fprintln(p.writer, p.notice.Sprintf(format, args...))
}

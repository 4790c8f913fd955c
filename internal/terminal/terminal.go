package terminal

import (
	"os"

	"github.com/mattn/go-isatty"
)

// HasTTY reports whether both stdin and stdout are connected to a terminal.
func HasTTY() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

func isTerminal(file *os.File) bool {
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

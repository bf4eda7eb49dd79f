// Package console implements the interactive prompts and the plain-text
// report printed to the terminal.
package console

import (
	"os"

	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether v is an *os.File attached to a terminal.
func IsTerminal(v any) bool {
	file, ok := v.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// isTerminal reports whether stream is an interactive terminal.
func isTerminal(stream any) bool {
	file, ok := stream.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// promptable reports whether prompts can be shown: interactive matching is
// enabled and both ends of the conversation are terminals.
func promptable(enabled bool, in io.Reader, out io.Writer) bool {
	return enabled && isTerminal(in) && isTerminal(out)
}

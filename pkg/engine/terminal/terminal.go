// Package terminal reports the size of the controlling terminal and lays
// text out to fit it.
package terminal

import (
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

// Size is a terminal size in character cells.
type Size struct {
	Width, Height int
}

// Current returns the size of stdout, falling back to 80x24 when it is
// not a terminal.
func Current() Size {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return Size{Width: DefaultWidth, Height: DefaultHeight}
	}
	return Size{Width: w, Height: h}
}

// Wrap breaks text into lines no wider than width, splitting on spaces.
// Existing newlines are kept. Words longer than width get a line of their own.
func Wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if len(line)+1+len(w) > width {
				out = append(out, line)
				line = w
				continue
			}
			line += " " + w
		}
		out = append(out, line)
	}
	return out
}

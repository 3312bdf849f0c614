package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrInterrupted is returned when the player presses Ctrl+C.
var ErrInterrupted = errors.New("interrupted")

// Terminal reads keys and lines from a terminal. Arrow keys are reported
// without waiting for Enter; anything else is collected until Enter.
type Terminal struct {
	in    *os.File
	out   io.Writer
	lines *bufio.Reader
}

// NewTerminal returns a reader on stdin that echoes to stdout.
func NewTerminal() *Terminal {
	return &Terminal{in: os.Stdin, out: os.Stdout}
}

// NewTerminalFrom reads from in and echoes to out.
func NewTerminalFrom(in *os.File, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out}
}

// IsTerminal reports whether the input is an interactive terminal.
func (t *Terminal) IsTerminal() bool {
	return term.IsTerminal(int(t.in.Fd()))
}

func (t *Terminal) readByte() (byte, error) {
	buf := make([]byte, 1)
	_, err := t.in.Read(buf)
	return buf[0], err
}

// tryReadArrowKey attempts to read an arrow key escape sequence.
// Returns the arrow direction string if successful, empty string otherwise.
func (t *Terminal) tryReadArrowKey(firstByte byte) string {
	if firstByte != 0x1b {
		return ""
	}

	b2, err := t.readByte()
	if err != nil {
		return ""
	}

	// Handle both CSI sequences (ESC [) and SS3 sequences (ESC O)
	if b2 == '[' || b2 == 'O' {
		b3, err := t.readByte()
		if err != nil {
			return ""
		}

		switch b3 {
		case 'A':
			return "arrow_up"
		case 'B':
			return "arrow_down"
		case 'C':
			return "arrow_right"
		case 'D':
			return "arrow_left"
		}
		return ""
	}

	// A lone escape followed by another key
	return "escape"
}

// ReadKey reads input with support for arrow keys. Arrow keys return
// immediately; text is echoed and collected until Enter. An empty line is
// reported as "enter". If the input is not a terminal, a plain line is read.
func (t *Terminal) ReadKey() (string, error) {
	if !t.IsTerminal() {
		line, err := t.readLine()
		if err != nil {
			return "", err
		}
		if line == "" {
			return "enter", nil
		}
		return line, nil
	}

	fd := int(t.in.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return "", fmt.Errorf("set terminal to raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	b1, err := t.readByte()
	if err != nil {
		return "", err
	}

	if arrowKey := t.tryReadArrowKey(b1); arrowKey != "" {
		fmt.Fprint(t.out, "\r\n")
		return arrowKey, nil
	}

	switch b1 {
	case 3:
		fmt.Fprint(t.out, "\r\n")
		return "", ErrInterrupted
	case '\n', '\r':
		return "enter", nil
	case '\t':
		return "tab", nil
	}

	var input []byte
	if b1 >= 32 && b1 < 127 {
		input = append(input, b1)
		fmt.Fprint(t.out, string(b1))
	}

	for {
		b, err := t.readByte()
		if err != nil {
			break
		}

		// Arrow keys pressed during text entry are discarded
		if b == 0x1b {
			t.tryReadArrowKey(b)
			continue
		}

		if b == 127 || b == 8 {
			if len(input) > 0 {
				input = input[:len(input)-1]
				fmt.Fprint(t.out, "\b \b")
			}
			continue
		}

		if b == '\n' || b == '\r' {
			fmt.Fprint(t.out, "\r\n")
			break
		}

		if b == 3 {
			fmt.Fprint(t.out, "\r\n")
			return "", ErrInterrupted
		}

		if b >= 32 && b < 127 {
			input = append(input, b)
			fmt.Fprint(t.out, string(b))
		}
	}

	return strings.TrimSpace(string(input)), nil
}

// ReadLine reads a full line with normal echo.
func (t *Terminal) ReadLine() (string, error) {
	return t.readLine()
}

// ReadSecret reads a line without echo, falling back to a plain line when
// the input is not a terminal.
func (t *Terminal) ReadSecret() (string, error) {
	if !t.IsTerminal() {
		return t.readLine()
	}
	b, err := term.ReadPassword(int(t.in.Fd()))
	fmt.Fprintln(t.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (t *Terminal) readLine() (string, error) {
	if t.lines == nil {
		t.lines = bufio.NewReader(t.in)
	}
	line, err := t.lines.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

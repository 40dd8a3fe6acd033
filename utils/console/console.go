// Package console draws slides on a terminal and reads navigation keys.
package console

import (
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	defaultWidth  = 80
	defaultHeight = 24

	clearScreen = "\x1b[2J\x1b[H"
)

// Console is a terminal switched into raw mode for the duration of a show.
// When input is not a terminal it works as a plain writer.
type Console struct {
	in  *os.File
	out io.Writer
	old *term.State
}

// Open prepares console, Close must be called to restore terminal state.
func Open(in *os.File, out io.Writer) (*Console, error) {
	c := &Console{in: in, out: out}
	if term.IsTerminal(int(in.Fd())) {
		old, err := term.MakeRaw(int(in.Fd()))
		if err != nil {
			return nil, err
		}
		c.old = old
	}
	return c, nil
}

func (c *Console) Close() error {
	if c.old == nil {
		return nil
	}
	err := term.Restore(int(c.in.Fd()), c.old)
	c.old = nil
	return err
}

// Raw reports whether terminal is in raw mode.
func (c *Console) Raw() bool {
	return c.old != nil
}

// Size returns terminal size falling back to 80x24.
func (c *Console) Size() (int, int) {
	if f, ok := c.out.(*os.File); ok {
		if w, h, err := term.GetSize(int(f.Fd())); err == nil && w > 0 && h > 0 {
			return w, h
		}
	}
	return defaultWidth, defaultHeight
}

// Keys returns reader of navigation commands.
func (c *Console) Keys() *KeyReader {
	return NewKeyReader(c.in)
}

// Draw replaces screen content with text and status line.
func (c *Console) Draw(text, status string) error {
	var b strings.Builder
	if c.Raw() {
		b.WriteString(clearScreen)
	}
	b.WriteString(text)
	if len(status) > 0 {
		if !strings.HasSuffix(text, "\n") {
			b.WriteByte('\n')
		}
		b.WriteString(status)
		b.WriteByte('\n')
	}
	out := b.String()
	if c.Raw() {
		// raw mode does not translate line feeds
		out = strings.ReplaceAll(out, "\n", "\r\n")
	}
	_, err := io.WriteString(c.out, out)
	return err
}

package console

import (
	"bufio"
	"io"
	"strconv"
)

// Action is what user asked for with keyboard.
type Action int

const (
	ActionNone Action = iota
	ActionNext
	ActionPrevious
	ActionGoto
	ActionRebuild
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionNext:
		return "next"
	case ActionPrevious:
		return "previous"
	case ActionGoto:
		return "goto"
	case ActionRebuild:
		return "rebuild"
	case ActionQuit:
		return "quit"
	default:
		return "none"
	}
}

// Command is decoded key press. Slide is set for ActionGoto only.
type Command struct {
	Action Action
	Slide  int
}

const (
	keyCtrlC     = 0x03
	keyCtrlD     = 0x04
	keyBackspace = 0x08
	keyEscape    = 0x1b
	keyDelete    = 0x7f
)

// KeyReader decodes navigation keys: n, space and right arrow move forward,
// p, backspace and left arrow move back, digits followed by enter jump to a
// slide, r rebuilds and q, escape or ctrl-c quit.
type KeyReader struct {
	r      *bufio.Reader
	digits []byte
}

func NewKeyReader(r io.Reader) *KeyReader {
	return &KeyReader{r: bufio.NewReader(r)}
}

// Pending returns digits typed so far.
func (k *KeyReader) Pending() string {
	return string(k.digits)
}

// Next blocks until a complete command is read. End of input is reported as
// quit.
func (k *KeyReader) Next() (Command, error) {
	for {
		b, err := k.r.ReadByte()
		if err == io.EOF {
			return Command{Action: ActionQuit}, nil
		}
		if err != nil {
			return Command{}, err
		}

		switch {
		case b >= '0' && b <= '9':
			k.digits = append(k.digits, b)
			continue
		case (b == '\r' || b == '\n') && len(k.digits) > 0:
			n, err := strconv.Atoi(string(k.digits))
			k.digits = k.digits[:0]
			if err != nil {
				continue
			}
			return Command{Action: ActionGoto, Slide: n}, nil
		}
		k.digits = k.digits[:0]

		switch b {
		case 'n', ' ':
			return Command{Action: ActionNext}, nil
		case 'p', keyBackspace, keyDelete:
			return Command{Action: ActionPrevious}, nil
		case 'r':
			return Command{Action: ActionRebuild}, nil
		case 'q', keyCtrlC, keyCtrlD:
			return Command{Action: ActionQuit}, nil
		case keyEscape:
			if cmd, ok := k.escape(); ok {
				return cmd, nil
			}
			return Command{Action: ActionQuit}, nil
		}
	}
}

// escape decodes arrow keys, lone escape is not a sequence.
func (k *KeyReader) escape() (Command, bool) {
	if k.r.Buffered() == 0 {
		return Command{}, false
	}
	if b, _ := k.r.Peek(1); len(b) == 0 || b[0] != '[' {
		return Command{}, false
	}
	seq := make([]byte, 2)
	if _, err := io.ReadFull(k.r, seq); err != nil {
		return Command{}, false
	}
	switch seq[1] {
	case 'C':
		return Command{Action: ActionNext}, true
	case 'D':
		return Command{Action: ActionPrevious}, true
	}
	return Command{Action: ActionNone}, true
}

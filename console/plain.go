package console

import (
	"github.com/charmbracelet/x/ansi"

	telnet "github.com/moodclient/teleconsole"
)

// PlainLine collects lines from clients that cannot be driven full-screen. The client
// is expected to edit the line itself; PlainLine only echoes when the client asked it
// to, and removes any escape sequences the client's keys produced.
type PlainLine struct {
	terminal  *telnet.Terminal
	echoing   func() bool
	lineOut   func(line []byte)
	maxLength int

	line         []byte
	justPushedCR bool
}

// NewPlainLine creates a line collector calling lineOut with each completed line.
// Lines longer than maxLength bytes are cut short with a bell, 0 means no limit.
func NewPlainLine(terminal *telnet.Terminal, echoing func() bool, lineOut func(line []byte), maxLength int) *PlainLine {
	return &PlainLine{
		terminal:  terminal,
		echoing:   echoing,
		lineOut:   lineOut,
		maxLength: maxLength,
	}
}

func (l *PlainLine) echo(b []byte) {
	if l.echoing != nil && l.echoing() {
		l.terminal.Write(b)
	}
}

// Receive handles application bytes from the client
func (l *PlainLine) Receive(data []byte) {
	for _, b := range data {
		hadPushedCR := l.justPushedCR
		l.justPushedCR = false

		switch b {
		case '\r':
			l.justPushedCR = true
			l.flush()
		case '\n':
			if !hadPushedCR {
				l.flush()
			}
		case 0:
			// CR NUL
		case ansi.DEL, ansi.BS:
			l.EraseChar()
		default:
			l.insert(b)
		}
	}
}

func (l *PlainLine) insert(b byte) {
	if l.maxLength > 0 && len(l.line) >= l.maxLength {
		l.echo([]byte{ansi.BEL})
		return
	}

	l.line = append(l.line, b)
	l.echo([]byte{b})
}

// EraseChar removes the last byte of the line
func (l *PlainLine) EraseChar() {
	if len(l.line) == 0 {
		return
	}

	l.line = l.line[:len(l.line)-1]
	l.echo([]byte("\b \b"))
}

// EraseLine discards the line collected so far
func (l *PlainLine) EraseLine() {
	if len(l.line) == 0 {
		return
	}

	l.line = l.line[:0]
	l.echo([]byte("\n"))
}

// Text returns the line collected so far with escape sequences removed
func (l *PlainLine) Text() []byte {
	return []byte(ansi.Strip(string(l.line)))
}

func (l *PlainLine) flush() {
	l.echo([]byte("\n"))

	text := l.Text()
	l.line = l.line[:0]

	if l.lineOut != nil {
		l.lineOut(text)
	}
}

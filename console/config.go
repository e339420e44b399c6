package console

import (
	"log/slog"
	"time"

	"github.com/moodclient/teleconsole/lineedit"
)

// DefaultPrompt is shown when Config.Prompt is empty
const DefaultPrompt = "> "

// AcceptFunc handles one line entered by the user. It runs on the session's loop
// goroutine and may call any Session method.
type AcceptFunc func(s *Session, line string)

// Config describes how sessions behave. The zero value is usable: lines are accepted
// and discarded.
type Config struct {
	// Logger receives session and protocol logs. Nil means slog.Default().
	Logger *slog.Logger

	// Prompt is drawn in front of the edit line
	Prompt string

	// Greeting is printed once setup is complete, before the first prompt
	Greeting string

	// CharsetName is the 8-bit character set spoken on the wire, ISO-8859-1 when empty
	CharsetName string

	// SearchPath lists the terminfo directories used to look up the client's terminal
	// type. Nil means terminfo.DefaultSearchPath().
	SearchPath []string

	// SetupTimeout bounds option negotiation, telnet.DefaultSetupTimeout when 0
	SetupTimeout time.Duration

	// KeyTimeout is how long an unfinished key sequence waits for more bytes,
	// screen.DefaultKeyTimeout when 0
	KeyTimeout time.Duration

	// HistorySize caps the number of remembered lines, lineedit.DefaultHistorySize when 0
	HistorySize int

	// MaxLineLength limits lines collected from clients that cannot run the full-screen
	// editor. 0 means no limit.
	MaxLineLength int

	// Completer supplies Tab completions in the full-screen editor
	Completer lineedit.Completer

	// Accept handles each entered line
	Accept AcceptFunc
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}

	return c.Logger
}

func (c Config) prompt() string {
	if c.Prompt == "" {
		return DefaultPrompt
	}

	return c.Prompt
}

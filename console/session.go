// Package console serves a line-editing command console over telnet. Each connection
// gets a Session that negotiates terminal options, then runs either the full-screen
// editor or, for clients that cannot support it, a plain line-at-a-time reader.
package console

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"

	telnet "github.com/moodclient/teleconsole"
	"github.com/moodclient/teleconsole/eventloop"
	"github.com/moodclient/teleconsole/keys"
	"github.com/moodclient/teleconsole/lineedit"
	"github.com/moodclient/teleconsole/screen"
	"github.com/moodclient/teleconsole/telopts"
	"github.com/moodclient/teleconsole/utils"
)

const (
	readBufferSize = 4096
	eventBacklog   = 64

	aytResponse = "[yes]"
)

// Mode is the input mode a session settled on after negotiation
type Mode int

const (
	// ModeNegotiating is the mode until setup completes; typed bytes are held back
	ModeNegotiating Mode = iota
	// ModeFullScreen runs the line editor through the client's terminfo entry
	ModeFullScreen
	// ModePlain reads whole lines edited by the client
	ModePlain
)

func (m Mode) String() string {
	switch m {
	case ModeNegotiating:
		return "negotiating"
	case ModeFullScreen:
		return "full-screen"
	case ModePlain:
		return "plain"
	}

	return "unknown"
}

// Session runs one console connection. A reader goroutine feeds received bytes to the
// event loop, which owns the terminal, renderer and editor; a writer goroutine sends
// whatever output the loop produced. Session methods other than Run and Notify must be
// called on the loop goroutine, which is where the Accept callback runs.
type Session struct {
	conn   io.ReadWriteCloser
	config Config
	logger *slog.Logger
	loop   *eventloop.Loop

	terminal *telnet.Terminal
	charMode *utils.CharacterModeTracker
	renderer *screen.Renderer
	editor   *lineedit.Editor
	plain    *PlainLine

	mode     Mode
	held     []byte
	prompt   string
	writes   chan []byte
	writing  bool
	closing  bool
	closeErr error
}

// NewSession prepares a session on conn. Nothing is sent until Run is called.
func NewSession(conn io.ReadWriteCloser, config Config) (*Session, error) {
	s := &Session{
		conn:   conn,
		config: config,
		logger: config.logger(),
		loop:   eventloop.New(eventBacklog),
		prompt: config.prompt(),
		writes: make(chan []byte, 1),
	}

	if addressed, ok := conn.(interface{ RemoteAddr() net.Addr }); ok {
		s.logger = s.logger.With(slog.String("remote", addressed.RemoteAddr().String()))
	}

	clock := sessionClock{s}
	terminal, err := telnet.NewTerminal(clock, telnet.TerminalConfig{
		CharsetName:  config.CharsetName,
		SetupTimeout: config.SetupTimeout,
		TelOpts: []telnet.TelnetOption{
			telopts.RegisterTTYPE(telnet.TelOptRequestRemote),
			telopts.RegisterNAWS(telnet.TelOptRequestRemote),
			telopts.RegisterECHO(telnet.TelOptRequestLocal),
			telopts.RegisterSUPPRESSGOAHEAD(telnet.TelOptRequestLocal | telnet.TelOptAllowRemote),
			telopts.RegisterTRANSMITBINARY(telnet.TelOptRequestLocal | telnet.TelOptRequestRemote),
		},
		EventHooks: telnet.EventHooks{
			IncomingData:  []telnet.DataHandler{s.incomingData},
			Notification:  []telnet.CommandHandler{s.notification},
			TelOptEvent:   []telnet.TelOptEventHandler{s.telOptEvent},
			SetupComplete: []telnet.SetupCompleteHandler{s.setupComplete},
		},
	})
	if err != nil {
		return nil, err
	}

	s.terminal = terminal
	s.charMode = utils.NewCharacterModeTracker(terminal)
	utils.NewDebugLog(terminal, s.logger, utils.DefaultDebugLogConfig())

	s.renderer = screen.NewRenderer(terminalTransport{terminal}, clock, screen.Config{
		SearchPath: config.SearchPath,
		KeyTimeout: config.KeyTimeout,
	})

	return s, nil
}

// Run serves the connection until the client disconnects, the session is closed or ctx
// is cancelled. A clean disconnect returns nil.
func (s *Session) Run(ctx context.Context) error {
	go s.readLoop()
	go s.writeLoop()

	s.loop.Post(func() {
		s.terminal.Start()
		s.flush()
	})
	s.loop.Run(ctx)

	close(s.writes)
	_ = s.conn.Close()

	return s.closeErr
}

func (s *Session) readLoop() {
	buf := make([]byte, readBufferSize)

	for {
		n, err := s.conn.Read(buf)
		if n > 0 {
			data := append([]byte(nil), buf[:n]...)
			if !s.loop.Post(func() {
				s.terminal.Receive(data)
				s.flush()
			}) {
				return
			}
		}

		if err != nil {
			s.loop.Post(func() {
				s.end(err)
			})
			return
		}
	}
}

func (s *Session) writeLoop() {
	for b := range s.writes {
		_, err := s.conn.Write(b)
		if !s.loop.Post(func() {
			s.writing = false
			if err != nil {
				s.end(err)
				return
			}
			s.flush()
		}) {
			return
		}
	}
}

// flush hands queued output to the writer when it is idle
func (s *Session) flush() {
	if s.writing {
		return
	}

	if s.terminal.OutputLen() > 0 {
		s.writing = true
		s.writes <- s.terminal.TakeOutput()
		return
	}

	if s.closing {
		s.loop.Stop()
	}
}

func (s *Session) end(err error) {
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
		s.logger.Warn("Connection error", slog.Any("error", err))
		if s.closeErr == nil {
			s.closeErr = err
		}
	} else {
		s.logger.Info("Client disconnected")
	}

	s.loop.Stop()
}

// Close ends the session once the output produced so far has been sent
func (s *Session) Close() {
	if s.closing {
		return
	}

	s.closing = true
	if s.mode == ModeFullScreen {
		s.editor.Hide()
		s.renderer.Close()
	}
	s.flush()
}

// Notify prints text from any goroutine. The editor, if shown, is redrawn below it.
func (s *Session) Notify(text string) bool {
	return s.loop.Post(func() {
		s.Print(text)
		s.flush()
	})
}

// Mode returns the input mode chosen after negotiation
func (s *Session) Mode() Mode {
	return s.mode
}

// Terminal returns the telnet engine of the session
func (s *Session) Terminal() *telnet.Terminal {
	return s.terminal
}

// Logger returns the session's logger
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// TerminalType returns the terminal type the client reported, "" if none
func (s *Session) TerminalType() string {
	return terminalTransport{s.terminal}.TerminalType()
}

// Print writes a block of text to the client
func (s *Session) Print(text string) {
	b, err := s.terminal.Charset().Encode(text)
	if err != nil {
		s.logger.Warn("Unable to encode output", slog.Any("error", err))
		return
	}

	switch s.mode {
	case ModeFullScreen:
		s.editor.Print(b)
	default:
		if len(b) > 0 && b[len(b)-1] != '\n' {
			b = append(b, '\n')
		}
		s.terminal.Write(b)
	}
}

// SetPrompt replaces the prompt
func (s *Session) SetPrompt(prompt string) {
	s.prompt = prompt

	if s.mode == ModeFullScreen {
		b, _ := s.terminal.Charset().Encode(prompt)
		s.editor.Prompt(string(b))
	}
}

// History returns the lines entered in the full-screen editor, oldest first
func (s *Session) History() []string {
	if s.editor == nil {
		return nil
	}

	return s.editor.History()
}

func (s *Session) incomingData(t *telnet.Terminal, data []byte) {
	if s.closing {
		return
	}

	switch s.mode {
	case ModeFullScreen:
		s.renderer.Receive(data)
	case ModePlain:
		s.plain.Receive(data)
	default:
		s.held = append(s.held, data...)
	}
}

func (s *Session) notification(t *telnet.Terminal, c telnet.Command) {
	switch c.OpCode {
	case telnet.IP, telnet.BRK:
		if s.mode == ModeFullScreen {
			s.editor.OnKey(keys.Ctrl('C'))
		} else if s.mode == ModePlain {
			s.plain.EraseLine()
			s.showPrompt()
		}
	case telnet.AYT:
		s.Print(aytResponse)
	case telnet.EC:
		if s.mode == ModePlain {
			s.plain.EraseChar()
		}
	case telnet.EL:
		if s.mode == ModePlain {
			s.plain.EraseLine()
		}
	}
}

func (s *Session) telOptEvent(t *telnet.Terminal, event telnet.TelOptEvent) {
	if _, ok := event.(telopts.NAWSRemoteSizeChangedEvent); ok && s.mode == ModeFullScreen {
		s.renderer.WindowSizeChanged()
	}
}

func (s *Session) setupComplete(t *telnet.Terminal, event telnet.SetupCompleteEvent) {
	logger := s.logger.With(slog.String("terminalType", s.TerminalType()))

	err := s.renderer.Init()
	if err == nil && !s.charMode.IsCharacterMode() {
		err = errors.New("client is not in character mode")
		s.renderer.Close()
	}

	if err != nil {
		logger.Info("Using plain line mode", slog.Any("reason", err))
		s.startPlain()
	} else {
		logger.Info("Using full-screen editor")
		s.startFullScreen()
	}

	held := s.held
	s.held = nil
	s.incomingData(t, held)
}

func (s *Session) startFullScreen() {
	s.mode = ModeFullScreen
	s.editor = lineedit.New(s.renderer, lineedit.Config{
		HistorySize: s.config.HistorySize,
		Completer:   s.config.Completer,
		Accept: func(e *lineedit.Editor, line []byte) {
			s.accept(line)
			if !s.closing {
				e.Show()
			}
		},
		EOF: func(*lineedit.Editor) {
			s.Close()
		},
	})
	s.renderer.SetKeyHandler(s.editor)

	if s.config.Greeting != "" {
		s.Print(s.config.Greeting)
	}
	s.SetPrompt(s.prompt)
	s.editor.Show()
}

func (s *Session) startPlain() {
	s.mode = ModePlain
	s.plain = NewPlainLine(s.terminal, s.charMode.Echoing, func(line []byte) {
		s.accept(line)
		if !s.closing {
			s.showPrompt()
		}
	}, s.config.MaxLineLength)

	if s.config.Greeting != "" {
		s.Print(s.config.Greeting)
	}
	s.showPrompt()
}

func (s *Session) showPrompt() {
	if err := s.terminal.WriteText(s.prompt); err != nil {
		s.logger.Warn("Unable to encode prompt", slog.Any("error", err))
	}

	if sga := telnet.GetTelOpt[telopts.SUPPRESSGOAHEAD](s.terminal); sga != nil {
		sga.SendPromptHint()
	}
}

func (s *Session) accept(line []byte) {
	text, err := s.terminal.DecodeText(line)
	if err != nil {
		s.logger.Warn("Unable to decode line", slog.Any("error", err))
		return
	}

	s.logger.Debug("Line accepted", slog.String("line", text))
	if s.config.Accept != nil {
		s.config.Accept(s, text)
	}
}

// sessionClock sends the output produced by timer callbacks
type sessionClock struct {
	s *Session
}

func (c sessionClock) NewTimer(fire func()) eventloop.Timer {
	return c.s.loop.NewTimer(func() {
		fire()
		c.s.flush()
	})
}

// terminalTransport lets the renderer draw through the telnet engine
type terminalTransport struct {
	terminal *telnet.Terminal
}

func (t terminalTransport) Write(b []byte) {
	t.terminal.Write(b)
}

func (t terminalTransport) TerminalType() string {
	if ttype := telnet.GetTelOpt[telopts.TTYPE](t.terminal); ttype != nil {
		return ttype.RemoteTerminalType()
	}

	return ""
}

func (t terminalTransport) Width() int {
	if naws := telnet.GetTelOpt[telopts.NAWS](t.terminal); naws != nil {
		width, _ := naws.GetRemoteSize()
		return width
	}

	return 0
}

func (t terminalTransport) Height() int {
	if naws := telnet.GetTelOpt[telopts.NAWS](t.terminal); naws != nil {
		_, height := naws.GetRemoteSize()
		return height
	}

	return 0
}

package console

import (
	"bytes"
	"context"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	telnet "github.com/moodclient/teleconsole"
	"github.com/moodclient/teleconsole/terminfo/terminfotest"
	"github.com/moodclient/teleconsole/utils"
)

const (
	optBINARY = 0
	optECHO   = 1
	optSGA    = 3
	optTTYPE  = 24
	optNAWS   = 31
)

func iac(b ...byte) []byte {
	return append([]byte{telnet.IAC}, b...)
}

func join(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

// client is the far end of a session, collecting everything the server sends
type client struct {
	conn net.Conn

	mu   sync.Mutex
	out  bytes.Buffer
	done chan struct{}
}

func (c *client) drain() {
	defer close(c.done)

	buf := make([]byte, 1024)
	for {
		n, err := c.conn.Read(buf)
		c.mu.Lock()
		c.out.Write(buf[:n])
		c.mu.Unlock()

		if err != nil {
			return
		}
	}
}

func (c *client) output() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.out.String()
}

func (c *client) send(t *testing.T, b []byte) {
	t.Helper()

	if _, err := c.conn.Write(b); err != nil {
		t.Fatalf("client write: %v", err)
	}
}

type sessionRun struct {
	session *Session
	client  *client
	lines   chan string
	result  chan error
}

// startSession runs a session on one end of a pipe and waits for its opening
// negotiation before handing back the other end
func startSession(t *testing.T, config Config) *sessionRun {
	t.Helper()

	serverConn, clientConn := net.Pipe()
	t.Cleanup(func() { _ = clientConn.Close() })

	run := &sessionRun{
		client: &client{conn: clientConn, done: make(chan struct{})},
		lines:  make(chan string, 10),
		result: make(chan error, 1),
	}

	accept := config.Accept
	config.Logger = utils.NewLogger(io.Discard, utils.LevelTrace)
	config.Accept = func(s *Session, line string) {
		run.lines <- line
		if accept != nil {
			accept(s, line)
		}
	}

	session, err := NewSession(serverConn, config)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	run.session = session

	go func() {
		run.result <- session.Run(context.Background())
	}()

	// Start's requests go out before anything the client sends is read
	buf := make([]byte, 1024)
	n, err := clientConn.Read(buf)
	if err != nil {
		t.Fatalf("client read: %v", err)
	}
	run.client.out.Write(buf[:n])
	go run.client.drain()

	return run
}

func (r *sessionRun) expectLine(t *testing.T, expected string) {
	t.Helper()

	select {
	case line := <-r.lines:
		if line != expected {
			t.Errorf("line expect %q, got %q", expected, line)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for line %q; output %q", expected, r.client.output())
	}
}

func (r *sessionRun) expectEnd(t *testing.T) {
	t.Helper()

	select {
	case err := <-r.result:
		if err != nil {
			t.Errorf("Run expect nil, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for the session to end")
	}

	<-r.client.done
}

func TestSessionFullScreen(t *testing.T) {
	run := startSession(t, Config{
		SearchPath: terminfotest.SearchPath(t, terminfotest.VT220()),
		Prompt:     "$ ",
		Greeting:   "welcome",
	})

	opening := run.client.output()
	for _, expected := range [][]byte{
		iac(telnet.DO, optTTYPE), iac(telnet.DO, optNAWS),
		iac(telnet.WILL, optECHO), iac(telnet.WILL, optSGA),
		iac(telnet.WILL, optBINARY), iac(telnet.DO, optBINARY),
	} {
		if !strings.Contains(opening, string(expected)) {
			t.Errorf("opening expect %q, got %q", expected, opening)
		}
	}

	run.client.send(t, join(
		iac(telnet.WILL, optTTYPE),
		iac(telnet.SB, optTTYPE, 0), []byte("VT220"), iac(telnet.SE),
		iac(telnet.WILL, optNAWS),
		iac(telnet.SB, optNAWS, 0, 40, 0, 10), iac(telnet.SE),
		iac(telnet.DO, optBINARY),
		iac(telnet.WILL, optBINARY),
		iac(telnet.DO, optECHO),
		iac(telnet.DO, optSGA),
		[]byte("hello\r\x00"),
	))

	run.expectLine(t, "hello")

	run.client.send(t, []byte("caf\xe9\r\x00"))
	run.expectLine(t, "café")

	run.client.send(t, []byte{0x04})
	run.expectEnd(t)

	if mode := run.session.Mode(); mode != ModeFullScreen {
		t.Errorf("mode expect %s, got %s", ModeFullScreen, mode)
	}
	if tt := run.session.TerminalType(); tt != "vt220" {
		t.Errorf("terminal type expect vt220, got %q", tt)
	}
	if history := run.session.History(); len(history) != 2 || history[0] != "hello" || history[1] != "caf\xe9" {
		t.Errorf("history expect [hello caf\\xe9], got %q", history)
	}

	output := run.client.output()
	for _, expected := range []string{"\x1b[?1h\x1b=", "welcome", "\x1b[1m$ \x1b[m", "hello", "\x1b[?1l\x1b>"} {
		if !strings.Contains(output, expected) {
			t.Errorf("output expect %q, got %q", expected, output)
		}
	}
}

func TestSessionPlainFallback(t *testing.T) {
	run := startSession(t, Config{
		SearchPath: terminfotest.SearchPath(t, terminfotest.VT220()),
		Accept: func(s *Session, line string) {
			if line == "quit" {
				s.Close()
			}
		},
	})

	run.client.send(t, join(
		iac(telnet.WONT, optTTYPE),
		iac(telnet.WONT, optNAWS),
		iac(telnet.DONT, optBINARY),
		iac(telnet.WONT, optBINARY),
		iac(telnet.DONT, optECHO),
		iac(telnet.DONT, optSGA),
		[]byte("first\xe9\r\n"),
		iac(telnet.AYT),
	))

	// Without binary mode the client may only send 7-bit text
	run.expectLine(t, "first?")

	run.client.send(t, []byte("quit\r\n"))
	run.expectLine(t, "quit")
	run.expectEnd(t)

	if mode := run.session.Mode(); mode != ModePlain {
		t.Errorf("mode expect %s, got %s", ModePlain, mode)
	}

	output := run.client.output()
	prompt := DefaultPrompt + string(iac(telnet.GA))
	if strings.Count(output, prompt) != 2 {
		t.Errorf("expect two prompts followed by GA, got %q", output)
	}
	if !strings.Contains(output, aytResponse+"\r\n") {
		t.Errorf("expect AYT answered, got %q", output)
	}
	if strings.Contains(output, "first") {
		t.Errorf("expect no echo, got %q", output)
	}
}

func TestSessionNoTerminalType(t *testing.T) {
	run := startSession(t, Config{
		SearchPath: terminfotest.SearchPath(t, terminfotest.VT220()),
		Accept: func(s *Session, line string) {
			s.Close()
		},
	})

	// Character mode without a terminal type cannot run the editor
	run.client.send(t, join(
		iac(telnet.WONT, optTTYPE),
		iac(telnet.WONT, optNAWS),
		iac(telnet.DONT, optBINARY),
		iac(telnet.WONT, optBINARY),
		iac(telnet.DO, optECHO),
		iac(telnet.DO, optSGA),
		[]byte("bye\r\n"),
	))

	run.expectLine(t, "bye")
	run.expectEnd(t)

	if mode := run.session.Mode(); mode != ModePlain {
		t.Errorf("mode expect %s, got %s", ModePlain, mode)
	}
	if output := run.client.output(); !strings.Contains(output, "bye\r\n") {
		t.Errorf("expect the line echoed, got %q", output)
	}
}

func TestSessionClientDisconnect(t *testing.T) {
	run := startSession(t, Config{})

	_ = run.client.conn.Close()
	run.expectEnd(t)
}

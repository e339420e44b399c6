package console

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	telnet "github.com/moodclient/teleconsole"
	"github.com/moodclient/teleconsole/utils"
)

func TestServerServesAndStops(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	srv := &Server{Config: Config{Logger: utils.NewLogger(io.Discard, slog.LevelError)}}

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() {
		result <- srv.Serve(ctx, listener)
	}()

	conn, err := net.Dial("tcp", listener.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	buf := make([]byte, 64)
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n == 0 || buf[0] != telnet.IAC {
		t.Errorf("expect negotiation to start with IAC, got %q", buf[:n])
	}

	// Cancelling stops the listener and the open session
	cancel()

	select {
	case err := <-result:
		if err != nil {
			t.Errorf("Serve expect nil, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Serve did not return after cancel")
	}

	if _, err := net.Dial("tcp", listener.Addr().String()); err == nil {
		t.Errorf("expect the listener to be closed")
	}
}

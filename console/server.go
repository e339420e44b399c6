package console

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"sync"
)

// Server accepts telnet connections and runs a Session on each
type Server struct {
	// Config is used for every session
	Config Config
	// TLSConfig makes ListenAndServe accept TLS connections when set
	TLSConfig *tls.Config
}

// ListenAndServe listens on the TCP address addr and serves until ctx is cancelled
func (srv *Server) ListenAndServe(ctx context.Context, addr string) error {
	var listener net.Listener
	var err error

	if srv.TLSConfig != nil {
		listener, err = tls.Listen("tcp", addr, srv.TLSConfig)
	} else {
		listener, err = net.Listen("tcp", addr)
	}
	if err != nil {
		return err
	}

	return srv.Serve(ctx, listener)
}

// Serve accepts connections from listener until ctx is cancelled or the listener fails.
// It closes the listener and waits for open sessions to end before returning.
func (srv *Server) Serve(ctx context.Context, listener net.Listener) error {
	logger := srv.Config.logger()
	logger.Info("Listening", slog.String("address", listener.Addr().String()))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	var sessions sync.WaitGroup
	defer sessions.Wait()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		session, err := NewSession(conn, srv.Config)
		if err != nil {
			logger.Error("Unable to start session", slog.Any("error", err))
			_ = conn.Close()
			continue
		}

		sessions.Add(1)
		go func() {
			defer sessions.Done()

			session.Logger().Info("Client connected")
			if err := session.Run(ctx); err != nil {
				session.Logger().Warn("Session ended", slog.Any("error", err))
			}
		}()
	}
}

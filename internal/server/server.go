package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	maxHeaderBytes    = 1 << 20 // 1 MB
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 60 * time.Second
	// DefaultGrace bounds how long Serve waits for in-flight requests.
	DefaultGrace = 10 * time.Second
)

// Server runs the panel's HTTP surface until its context ends.
type Server struct {
	httpServer *http.Server
	grace      time.Duration
}

// New builds a server for port ("8080" or ":8080"). There is no write
// timeout: /ws streams stay open for as long as a dashboard is connected.
func New(port string, handler http.Handler, grace time.Duration) *Server {
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              normalizeAddr(port),
			Handler:           handler,
			MaxHeaderBytes:    maxHeaderBytes,
			ReadHeaderTimeout: readHeaderTimeout,
			IdleTimeout:       idleTimeout,
		},
		grace: grace,
	}
}

func normalizeAddr(port string) string {
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// Serve listens and blocks until ctx is done or the listener fails. On
// cancellation in-flight requests get the grace period to finish.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.httpServer.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.grace)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

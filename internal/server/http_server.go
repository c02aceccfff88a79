package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"syscall"
	"time"

	"github.com/Tyrowin/gochat/internal/log"
)

// maxPortAttempts bounds how many consecutive ports Listen tries when port
// fallback is enabled.
const maxPortAttempts = 20

// CreateServer creates an HTTP server for handler with production timeouts.
// WriteTimeout is left unset so long-lived WebSocket writes are governed by
// the per-connection write deadline instead.
func CreateServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Listen binds the configured address. With PortFallback set, a port that
// is already in use is skipped in favour of the next one.
func Listen(cfg Config) (net.Listener, error) {
	cfg = cfg.sanitized()

	attempts := 1
	if cfg.PortFallback {
		attempts = maxPortAttempts
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port+i))
		ln, err := net.Listen("tcp", addr)
		if err == nil {
			return ln, nil
		}
		lastErr = err
		if !errors.Is(err, syscall.EADDRINUSE) {
			return nil, err
		}
		log.L().Warn().Str("addr", addr).Msg("port in use, trying the next one")
	}
	return nil, lastErr
}

// Start runs the hub loop.
func (s *Server) Start() {
	go s.hub.Run()
	log.L().Info().Msg("hub started and ready to manage WebSocket connections")
}

// StartServer serves HTTP on ln until the server is shut down.
func StartServer(server *http.Server, ln net.Listener) error {
	log.L().Info().Str("addr", ln.Addr().String()).Msg("server listening")
	server.Addr = ln.Addr().String()
	return server.Serve(ln)
}

// ShutdownServer gracefully shuts down the HTTP server, waiting for active
// requests until timeout.
func ShutdownServer(server *http.Server, timeout time.Duration) error {
	log.L().Info().Msg("shutting down HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.L().Error().Err(err).Msg("HTTP server shutdown error")
		return err
	}

	log.L().Info().Msg("HTTP server shutdown completed")
	return nil
}

package server

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/Tyrowin/gochat/internal/auth"
	"github.com/Tyrowin/gochat/internal/chat"
	"github.com/Tyrowin/gochat/internal/upload"
)

// Server bundles the hub with everything the HTTP surface needs.
type Server struct {
	cfg      Config
	hub      *Hub
	gate     *auth.Gate
	uploads  *upload.Store
	origins  originPolicy
	upgrader websocket.Upgrader
}

// Option customizes a Server.
type Option func(*Server)

// WithUploads enables the /upload and /uploads routes.
func WithUploads(store *upload.Store) Option {
	return func(s *Server) { s.uploads = store }
}

// WithRoom seeds the hub with an existing room.
func WithRoom(room *chat.Room) Option {
	return func(s *Server) { s.hub = NewHub(s.cfg, room) }
}

// New creates a Server. The hub is not running until Start is called.
func New(cfg Config, gate *auth.Gate, opts ...Option) *Server {
	cfg = cfg.sanitized()

	s := &Server{
		cfg:     cfg,
		gate:    gate,
		origins: newOriginPolicy(cfg.AllowedOrigins),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.hub == nil {
		s.hub = NewHub(cfg, nil)
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.origins.checkOrigin,
	}
	return s
}

// Hub returns the hub behind the server.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Config returns the sanitized configuration.
func (s *Server) Config() Config {
	return s.cfg
}

// wantsModerator reports whether the handshake claims the moderator channel.
func wantsModerator(r *http.Request) bool {
	if strings.EqualFold(r.URL.Query().Get("admin"), "true") {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Chat-Admin"), "true")
}

func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}

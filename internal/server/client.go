package server

import (
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Tyrowin/gochat/internal/chat"
	"github.com/Tyrowin/gochat/internal/log"
)

// Role is fixed at handshake time and decides which event handlers a
// connection can reach.
type Role int

const (
	RoleParticipant Role = iota
	RoleModerator
)

func (r Role) String() string {
	if r == RoleModerator {
		return "moderator"
	}
	return "participant"
}

// Client is one WebSocket connection. Fields below the send channel are
// owned by the hub goroutine.
type Client struct {
	id     string
	role   Role
	addr   string
	conn   *websocket.Conn
	send   chan []byte
	hub    *Hub
	logger zerolog.Logger

	rateLimiter *rateLimiter

	joined    bool
	kickTimer *time.Timer
}

// NewClient wraps conn for hub. A nil conn produces a detached client whose
// pumps are never started.
func NewClient(conn *websocket.Conn, hub *Hub, addr string, role Role) *Client {
	id := uuid.New().String()
	cfg := hub.cfg

	if conn != nil {
		conn.SetReadLimit(cfg.MaxMessageSize)
	}

	return &Client{
		id:          id,
		role:        role,
		addr:        addr,
		conn:        conn,
		send:        make(chan []byte, cfg.SendBuffer),
		hub:         hub,
		rateLimiter: newRateLimiter(cfg.RateLimit),
		logger: log.L().With().
			Str(log.FieldConnID, id).
			Str(log.FieldShortID, chat.ShortID(id)).
			Str(log.FieldRole, role.String()).
			Str(log.FieldRemote, addr).
			Logger(),
	}
}

// ID returns the connection id.
func (c *Client) ID() string { return c.id }

// Role returns the role assigned at handshake.
func (c *Client) Role() Role { return c.role }

// Send exposes the outgoing queue of a detached client.
func (c *Client) Send() <-chan []byte { return c.send }

func (c *Client) setupReadConnection() {
	pongWait := c.hub.cfg.PongWait
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Debug().Err(err).Msg("failed to set initial read deadline")
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
}

func (c *Client) logReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		c.logger.Warn().Int64("limit", c.hub.cfg.MaxMessageSize).Msg("frame exceeded maximum size")
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived):
		c.logger.Debug().Err(err).Msg("client disconnected")
	case errors.Is(err, io.EOF) || isExpectedCloseError(err):
		c.logger.Debug().Err(err).Msg("connection closed")
	default:
		c.logger.Warn().Err(err).Msg("websocket read error")
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.closeConnection()
	}()

	c.setupReadConnection()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadError(err)
			return
		}

		if !c.rateLimiter.allow() {
			c.logger.Warn().
				Int("burst", c.hub.cfg.RateLimit.Burst).
				Dur("interval", c.hub.cfg.RateLimit.RefillInterval).
				Msg("rate limit exceeded; discarding frame")
			continue
		}

		if err := c.hub.HandleEvent(c, raw); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				c.writeClose()
				return
			}
			if !c.write(websocket.TextMessage, message) {
				return
			}
		case <-ticker.C:
			if !c.write(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) write(messageType int, payload []byte) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteWait)); err != nil {
		c.logger.Debug().Err(err).Msg("failed to set write deadline")
		return false
	}
	if err := c.conn.WriteMessage(messageType, payload); err != nil {
		if !isExpectedCloseError(err) {
			c.logger.Warn().Err(err).Msg("websocket write error")
		}
		return false
	}
	return true
}

func (c *Client) writeClose() {
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteWait))
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := c.conn.WriteMessage(websocket.CloseMessage, msg); err != nil && !isExpectedCloseError(err) {
		c.logger.Debug().Err(err).Msg("failed to write close frame")
	}
}

func (c *Client) closeConnection() {
	if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
		c.logger.Debug().Err(err).Msg("error closing connection")
	}
}

// Package server runs the chat room over WebSockets: a single Hub goroutine
// owns all room state, per-connection pumps feed it events, and HTTP
// handlers expose the participant socket, the moderator socket and the
// moderator REST surface.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tyrowin/gochat/internal/chat"
	"github.com/Tyrowin/gochat/internal/log"
)

// ErrHubStopped is returned when work is submitted after shutdown.
var ErrHubStopped = errors.New("server: hub stopped")

type inboundEvent struct {
	client *Client
	raw    []byte
}

// Hub owns the room and every connection. All mutations run on the Run
// goroutine, so neither the room nor the client map needs locking.
type Hub struct {
	cfg       Config
	room      *chat.Room
	presenter chat.Presenter

	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	inbound    chan inboundEvent
	commands   chan func()

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	logger zerolog.Logger
}

// NewHub creates a Hub serving room. Run must be called before the hub
// accepts work.
func NewHub(cfg Config, room *chat.Room) *Hub {
	cfg = cfg.sanitized()
	if room == nil {
		room = chat.NewRoom()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		cfg:        cfg,
		room:       room,
		presenter:  chat.NewPresenter(cfg.Location()),
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundEvent),
		commands:   make(chan func()),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		logger:     log.L().With().Str("component", "hub").Logger(),
	}
}

// Run starts the hub's event loop. It returns after Shutdown.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			h.handleRegister(client)

		case client := <-h.unregister:
			h.disconnect(client, "closed")

		case ev := <-h.inbound:
			h.dispatch(ev)

		case fn := <-h.commands:
			h.safely("command", fn)
		}
	}
}

// Register hands a freshly upgraded connection to the hub.
func (h *Hub) Register(c *Client) error {
	select {
	case h.register <- c:
		return nil
	case <-h.ctx.Done():
		return ErrHubStopped
	}
}

// Unregister reports that c's transport closed.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.ctx.Done():
	}
}

// HandleEvent queues one raw frame received from c.
func (h *Hub) HandleEvent(c *Client, raw []byte) error {
	select {
	case h.inbound <- inboundEvent{client: c, raw: raw}:
		return nil
	case <-h.ctx.Done():
		return ErrHubStopped
	}
}

// exec runs fn on the hub goroutine and waits for it to finish.
func (h *Hub) exec(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}

	select {
	case h.commands <- wrapped:
	case <-h.ctx.Done():
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	<-finished
	return nil
}

// post schedules fn on the hub goroutine without waiting.
func (h *Hub) post(fn func()) {
	select {
	case h.commands <- fn:
	case <-h.ctx.Done():
	}
}

func (h *Hub) safely(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error().Interface("panic", r).Str("stage", what).Msg("recovered from panic in hub")
		}
	}()
	fn()
}

func (h *Hub) handleRegister(c *Client) {
	if c == nil {
		h.logger.Warn().Msg("received nil client registration; skipping")
		return
	}

	h.clients[c.id] = c
	c.logger.Info().Int(log.FieldClients, len(h.clients)).Msg("client registered")

	if c.role == RoleParticipant {
		h.sendTo(c, EventSession, SessionInfo{ID: c.id, Username: chat.ShortID(c.id)})
	} else {
		log.Audit(c.auditContext(), log.ActionModeratorDial, c.id, "moderator connected")
	}

	if c.conn == nil {
		return
	}

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		c.writePump()
	}()
	go func() {
		defer h.wg.Done()
		c.readPump()
	}()
}

// live reports whether c is still the registered connection for its id.
func (h *Hub) live(c *Client) bool {
	cur, ok := h.clients[c.id]
	return ok && cur == c
}

// disconnect removes c and runs the leave cleanup once. Calls for a client
// that is already gone are ignored.
func (h *Hub) disconnect(c *Client, reason string) {
	if c == nil || !h.live(c) {
		return
	}

	delete(h.clients, c.id)
	if c.kickTimer != nil {
		c.kickTimer.Stop()
		c.kickTimer = nil
	}
	close(c.send)

	c.logger.Info().Str("reason", reason).Int(log.FieldClients, len(h.clients)).Msg("client unregistered")

	if c.role != RoleParticipant || !c.joined {
		return
	}
	c.joined = false

	msg, ok := h.room.Leave(c.id)
	if !ok {
		return
	}
	h.announce(msg)
	h.pushPresence()
}

func (h *Hub) dispatch(ev inboundEvent) {
	c := ev.client
	if c == nil || !h.live(c) {
		return
	}

	var env Envelope
	if err := json.Unmarshal(ev.raw, &env); err != nil || env.Event == "" {
		c.logger.Debug().Err(err).Msg("dropping malformed frame")
		return
	}

	handlers := participantHandlers
	if c.role == RoleModerator {
		handlers = moderatorHandlers
	}

	handle, ok := handlers[env.Event]
	if !ok {
		if c.role == RoleParticipant && isModeratorEvent(env.Event) {
			c.logger.Warn().Str(log.FieldEvent, env.Event).Msg("moderator command on participant channel ignored")
			return
		}
		c.logger.Debug().Str(log.FieldEvent, env.Event).Msg("dropping unknown event")
		return
	}

	h.safely(env.Event, func() { handle(h, c, env) })
}

type eventHandler func(h *Hub, c *Client, env Envelope)

var participantHandlers = map[string]eventHandler{
	EventJoin:       (*Hub).onJoin,
	EventMessage:    (*Hub).onMessage,
	EventDisconnect: (*Hub).onDisconnect,
}

var moderatorHandlers = map[string]eventHandler{
	EventAdminGetUsers:      (*Hub).onGetUsers,
	EventAdminGetMessages:   (*Hub).onGetMessages,
	EventAdminKickUser:      (*Hub).onKickUser,
	EventAdminDeleteMessage: (*Hub).onDeleteMessage,
}

func isModeratorEvent(event string) bool {
	_, ok := moderatorHandlers[event]
	return ok
}

func (h *Hub) onJoin(c *Client, _ Envelope) {
	if c.joined {
		c.logger.Debug().Msg("duplicate join ignored")
		return
	}

	_, msg := h.room.Join(c.id)
	c.joined = true
	c.logger.Info().Int(log.FieldOnline, h.room.Participants.Len()).Msg("participant joined")

	h.announce(msg)
	h.pushPresence()
}

func (h *Hub) onMessage(c *Client, env Envelope) {
	if !c.joined {
		c.logger.Debug().Msg("message before join dropped")
		return
	}

	var in ChatMessage
	if err := json.Unmarshal(env.Data, &in); err != nil {
		c.logger.Debug().Err(err).Msg("dropping malformed message payload")
		return
	}
	if strings.TrimSpace(in.Content) == "" && in.File == nil {
		return
	}

	msg := h.room.Post(c.id, in.Content, in.File)
	c.logger.Debug().Str(log.FieldMessageID, msg.ID).Msg("message posted")
	h.announce(msg)
}

func (h *Hub) onDisconnect(c *Client, _ Envelope) {
	h.disconnect(c, "client requested")
}

// announce delivers msg to everyone and mirrors it to moderators.
func (h *Hub) announce(msg chat.Message) {
	h.broadcastAll(EventNewMessage, msg)
	h.broadcastModerators(EventAdminMessageUpdate, h.presenter.Message(msg))
}

func (h *Hub) pushPresence() {
	all := h.room.Participants.List()
	page := chat.MapPage(chat.Page[chat.Participant]{Total: len(all), Data: all}, h.presenter.Participant)
	h.broadcastModerators(EventAdminUserUpdate, page)
}

func (h *Hub) broadcastAll(event string, data interface{}) {
	h.broadcast(event, data, func(*Client) bool { return true })
}

func (h *Hub) broadcastModerators(event string, data interface{}) {
	h.broadcast(event, data, func(c *Client) bool { return c.role == RoleModerator })
}

func (h *Hub) broadcast(event string, data interface{}, match func(*Client) bool) {
	payload, err := encodeEvent(event, data)
	if err != nil {
		h.logger.Error().Err(err).Str(log.FieldEvent, event).Msg("failed to encode event")
		return
	}

	var failed []*Client
	for _, c := range h.clients {
		if !match(c) {
			continue
		}
		if !h.enqueue(c, payload) {
			failed = append(failed, c)
		}
	}

	for _, c := range failed {
		c.logger.Warn().Msg("send buffer full; dropping client")
		h.disconnect(c, "send buffer full")
	}
}

func (h *Hub) sendTo(c *Client, event string, data interface{}) {
	payload, err := encodeEvent(event, data)
	if err != nil {
		h.logger.Error().Err(err).Str(log.FieldEvent, event).Msg("failed to encode event")
		return
	}
	if !h.enqueue(c, payload) {
		h.disconnect(c, "send buffer full")
	}
}

func (h *Hub) ack(c *Client, env Envelope, data interface{}) {
	if env.Ack == nil {
		return
	}
	payload, err := encodeAck(*env.Ack, data)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to encode ack")
		return
	}
	if !h.enqueue(c, payload) {
		h.disconnect(c, "send buffer full")
	}
}

func (h *Hub) enqueue(c *Client, payload []byte) bool {
	if !h.live(c) {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (h *Hub) shutdownClients() {
	h.logger.Info().Int(log.FieldClients, len(h.clients)).Msg("shutting down all client connections")

	for id, c := range h.clients {
		delete(h.clients, id)
		if c.kickTimer != nil {
			c.kickTimer.Stop()
		}
		close(c.send)
		if c.conn != nil {
			if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
				c.logger.Debug().Err(err).Msg("error closing client connection")
			}
		}
	}
}

// Shutdown stops the event loop, closes every connection and waits for the
// pump goroutines, giving up after timeout.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.logger.Info().Msg("initiating hub shutdown")
	h.cancel()

	finished := make(chan struct{})
	go func() {
		<-h.done
		h.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		h.logger.Info().Msg("hub shutdown completed")
		return nil
	case <-time.After(timeout):
		h.logger.Warn().Msg("hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}

package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Tyrowin/gochat/internal/chat"
	"github.com/Tyrowin/gochat/internal/log"
)

// Kick notifies the participant, announces the removal and closes the
// connection after the configured grace period. It reports false when the
// participant is absent or already being kicked.
func (h *Hub) Kick(ctx context.Context, connectionID string) (bool, error) {
	var ok bool
	err := h.exec(ctx, func() { ok = h.kick(ctx, connectionID) })
	return ok, err
}

// DeleteMessage removes a message from the log. Participants are not
// notified.
func (h *Hub) DeleteMessage(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := h.exec(ctx, func() { ok = h.deleteMessage(ctx, id) })
	return ok, err
}

// ListParticipants returns one page of the presence registry.
func (h *Hub) ListParticipants(ctx context.Context, page, pageSize int) (chat.Page[chat.ParticipantView], error) {
	var out chat.Page[chat.ParticipantView]
	err := h.exec(ctx, func() { out = h.room.ParticipantPage(h.presenter, page, pageSize) })
	return out, err
}

// ListMessages returns one page of the message log in the given order.
func (h *Hub) ListMessages(ctx context.Context, page, pageSize int, order chat.Order) (chat.Page[chat.MessageView], error) {
	var out chat.Page[chat.MessageView]
	err := h.exec(ctx, func() { out = h.room.MessagePage(h.presenter, page, pageSize, order) })
	return out, err
}

func (h *Hub) kick(ctx context.Context, connectionID string) bool {
	target, ok := h.clients[connectionID]
	if !ok || target.role != RoleParticipant || target.kickTimer != nil {
		return false
	}
	p, ok := h.room.Participants.Find(connectionID)
	if !ok {
		return false
	}

	h.sendTo(target, EventKicked, KickedNotice{Message: chat.KickedNotice})
	if !h.live(target) {
		// The notice overflowed the buffer and the client is already gone.
		return true
	}

	target.kickTimer = time.AfterFunc(h.cfg.KickGrace, func() {
		h.post(func() { h.disconnect(target, "kicked") })
	})

	h.announce(h.room.NoteKick(p))
	log.Audit(ctx, log.ActionKick, connectionID, "participant kicked")
	return true
}

func (h *Hub) deleteMessage(ctx context.Context, id string) bool {
	if !h.room.Messages.DeleteByID(id) {
		return false
	}
	log.Audit(ctx, log.ActionDeleteMessage, id, "message deleted")
	return true
}

func (c *Client) auditContext() context.Context {
	return log.WithLogger(context.Background(), c.logger)
}

func decodePage(env Envelope) PageRequest {
	var req PageRequest
	if len(env.Data) > 0 {
		_ = json.Unmarshal(env.Data, &req)
	}
	return req
}

func (h *Hub) onGetUsers(c *Client, env Envelope) {
	req := decodePage(env)
	page := h.room.ParticipantPage(h.presenter, req.Page, req.PageSize)
	h.sendTo(c, EventAdminUserUpdate, page)
	h.ack(c, env, page)
}

func (h *Hub) onGetMessages(c *Client, env Envelope) {
	req := decodePage(env)
	page := h.room.MessagePage(h.presenter, req.Page, req.PageSize, chat.NewestFirst)
	h.sendTo(c, EventAdminMessageUpdate, page)
	h.ack(c, env, page)
}

func (h *Hub) onKickUser(c *Client, env Envelope) {
	var req KickRequest
	if err := json.Unmarshal(env.Data, &req); err != nil {
		c.logger.Debug().Err(err).Msg("dropping malformed kick request")
		h.ack(c, env, Outcome{Success: false})
		return
	}
	h.ack(c, env, Outcome{Success: h.kick(c.auditContext(), req.UserID)})
}

func (h *Hub) onDeleteMessage(c *Client, env Envelope) {
	var req DeleteRequest
	if err := json.Unmarshal(env.Data, &req); err != nil {
		c.logger.Debug().Err(err).Msg("dropping malformed delete request")
		h.ack(c, env, Outcome{Success: false})
		return
	}
	h.ack(c, env, Outcome{Success: h.deleteMessage(c.auditContext(), req.ID)})
}

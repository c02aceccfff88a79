package server

import (
	"encoding/json"

	"github.com/Tyrowin/gochat/internal/chat"
)

// Socket event names.
const (
	// participant -> server
	EventJoin       = "join"
	EventMessage    = "message"
	EventDisconnect = "disconnect"

	// moderator -> server
	EventAdminGetUsers      = "adminGetUsers"
	EventAdminGetMessages   = "adminGetMessages"
	EventAdminKickUser      = "adminKickUser"
	EventAdminDeleteMessage = "adminDeleteMessage"

	// server -> client
	EventSession            = "session"
	EventNewMessage         = "newMessage"
	EventKicked             = "kicked"
	EventAdminUserUpdate    = "adminUserUpdate"
	EventAdminMessageUpdate = "adminMessageUpdate"
	EventAck                = "ack"
)

// Envelope is the frame exchanged over the socket in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	Ack   *int64          `json:"ack,omitempty"`
}

type outbound struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
	Ack   *int64      `json:"ack,omitempty"`
}

func encodeEvent(event string, data interface{}) ([]byte, error) {
	return json.Marshal(outbound{Event: event, Data: data})
}

func encodeAck(ack int64, data interface{}) ([]byte, error) {
	return json.Marshal(outbound{Event: EventAck, Data: data, Ack: &ack})
}

// SessionInfo tells a participant who it is.
type SessionInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ChatMessage is the payload of a participant's message event. UserID and
// Timestamp are accepted for compatibility but the server always uses the
// connection id and its own clock.
type ChatMessage struct {
	UserID    string     `json:"userId,omitempty"`
	Content   string     `json:"content"`
	Timestamp int64      `json:"timestamp,omitempty"`
	File      *chat.File `json:"file,omitempty"`
}

// PageRequest is the payload of adminGetUsers and adminGetMessages.
type PageRequest struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// KickRequest is the payload of adminKickUser.
type KickRequest struct {
	UserID string `json:"userId"`
}

// DeleteRequest is the payload of adminDeleteMessage.
type DeleteRequest struct {
	ID string `json:"id"`
}

// Outcome acknowledges a moderation command.
type Outcome struct {
	Success bool `json:"success"`
}

// KickedNotice is sent to a participant right before it is disconnected.
type KickedNotice struct {
	Message string `json:"message"`
}

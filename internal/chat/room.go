package chat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// System notice templates.
const (
	joinNotice  = "用户 %s 加入了聊天"
	leaveNotice = "用户 %s 离开了聊天"
	kickNotice  = "%s 已被管理员移出聊天室"

	// KickedNotice is delivered to a participant right before a moderator
	// closes its connection.
	KickedNotice = "您已被管理员移出聊天室"
)

// Room is the process-wide chat state: who is present and what was said.
type Room struct {
	Participants *Registry
	Messages     *Log

	now   func() time.Time
	newID func() string
}

// Option customizes a Room.
type Option func(*Room)

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Room) {
		r.now = now
		r.Participants.now = now
	}
}

// WithIDGenerator overrides how message ids are produced.
func WithIDGenerator(fn func() string) Option {
	return func(r *Room) { r.newID = fn }
}

// NewRoom creates an empty room.
func NewRoom(opts ...Option) *Room {
	r := &Room{
		Participants: NewRegistry(),
		Messages:     NewLog(),
		now:          time.Now,
		newID:        func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Join adds the connection to the registry and appends the join notice.
func (r *Room) Join(connectionID string) (Participant, Message) {
	p := r.Participants.Add(connectionID)
	return p, r.system(fmt.Sprintf(joinNotice, p.ShortID))
}

// Leave removes the connection from the registry. The leave notice is only
// appended when the connection had joined.
func (r *Room) Leave(connectionID string) (Message, bool) {
	p, ok := r.Participants.Remove(connectionID)
	if !ok {
		return Message{}, false
	}
	return r.system(fmt.Sprintf(leaveNotice, p.ShortID)), true
}

// Post appends a participant-authored message.
func (r *Room) Post(connectionID, content string, file *File) Message {
	msg := Message{
		ID:        r.newID(),
		Type:      KindUser,
		UserID:    connectionID,
		Username:  ShortID(connectionID),
		Content:   content,
		Timestamp: r.now().UnixMilli(),
		File:      file,
	}
	r.Messages.Append(msg)
	return msg
}

// NoteKick appends the notice announcing that a moderator removed p.
func (r *Room) NoteKick(p Participant) Message {
	return r.system(fmt.Sprintf(kickNotice, p.ShortID))
}

func (r *Room) system(content string) Message {
	msg := Message{
		ID:        r.newID(),
		Type:      KindSystem,
		Content:   content,
		Timestamp: r.now().UnixMilli(),
	}
	r.Messages.Append(msg)
	return msg
}

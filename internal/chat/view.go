package chat

import "time"

// SystemLabel is shown as the author of server-generated messages.
const SystemLabel = "system"

// TimeLayout is the moderator-facing timestamp format.
const TimeLayout = "2006/01/02 15:04:05"

// ParticipantView is a participant as listed to moderators.
type ParticipantView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	JoinedAt string `json:"joinedAt"`
}

// MessageView is a log entry as listed to moderators.
type MessageView struct {
	ID       string `json:"id"`
	Type     Kind   `json:"type"`
	Username string `json:"username"`
	Content  string `json:"content"`
	Time     string `json:"time"`
	File     *File  `json:"file,omitempty"`
}

// Presenter decorates registry and log entries for moderator views.
type Presenter struct {
	loc *time.Location
}

// NewPresenter formats times in loc, or the local zone when loc is nil.
func NewPresenter(loc *time.Location) Presenter {
	if loc == nil {
		loc = time.Local
	}
	return Presenter{loc: loc}
}

// FormatTime renders a unix millisecond timestamp.
func (p Presenter) FormatTime(ms int64) string {
	return time.UnixMilli(ms).In(p.location()).Format(TimeLayout)
}

// Participant decorates a registry entry.
func (p Presenter) Participant(v Participant) ParticipantView {
	return ParticipantView{
		ID:       v.ID,
		Username: ShortID(v.ID),
		JoinedAt: v.JoinedAt.In(p.location()).Format(TimeLayout),
	}
}

// Message decorates a log entry.
func (p Presenter) Message(m Message) MessageView {
	username := SystemLabel
	if !m.IsSystem() {
		username = ShortID(m.UserID)
	}
	return MessageView{
		ID:       m.ID,
		Type:     m.Type,
		Username: username,
		Content:  m.Content,
		Time:     p.FormatTime(m.Timestamp),
		File:     m.File,
	}
}

func (p Presenter) location() *time.Location {
	if p.loc == nil {
		return time.Local
	}
	return p.loc
}

// ParticipantPage pages the registry for moderators.
func (r *Room) ParticipantPage(p Presenter, page, pageSize int) Page[ParticipantView] {
	return MapPage(Paginate(r.Participants.List(), page, pageSize, Chronological), p.Participant)
}

// MessagePage pages the log for moderators.
func (r *Room) MessagePage(p Presenter, page, pageSize int, order Order) Page[MessageView] {
	return MapPage(Paginate(r.Messages.entries, page, pageSize, order), p.Message)
}

package chat

// Kind distinguishes participant-authored messages from server notices.
type Kind string

const (
	// KindUser marks a message a participant sent.
	KindUser Kind = "user"
	// KindSystem marks a join, leave or kick notice generated by the room.
	KindSystem Kind = "system"
)

// File references a blob returned by the upload store and attached to a
// chat message.
type File struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Type     string `json:"type"`
}

// Message is one entry of the chat log.
type Message struct {
	ID        string `json:"id"`
	Type      Kind   `json:"type"`
	UserID    string `json:"userId,omitempty"`
	Username  string `json:"username,omitempty"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
	File      *File  `json:"file,omitempty"`
}

// IsSystem reports whether the message was generated by the server.
func (m Message) IsSystem() bool {
	return m.Type == KindSystem
}

// Log is the append-only, chronologically ordered chat history. Entries are
// only ever removed by DeleteByID.
type Log struct {
	entries []Message
}

// NewLog creates an empty message log.
func NewLog() *Log {
	return &Log{}
}

// Append adds a message to the tail of the log.
func (l *Log) Append(msg Message) {
	l.entries = append(l.entries, msg)
}

// DeleteByID removes the first message with the given id and reports whether
// one was found.
func (l *Log) DeleteByID(id string) bool {
	if id == "" {
		return false
	}
	for i := range l.entries {
		if l.entries[i].ID == id {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Find returns the message with the given id.
func (l *Log) Find(id string) (Message, bool) {
	for _, m := range l.entries {
		if m.ID == id {
			return m, true
		}
	}
	return Message{}, false
}

// Len reports the number of messages in the log.
func (l *Log) Len() int {
	return len(l.entries)
}

// Page returns the total length of the log and the requested window in the
// given order. Out of range pages produce an empty slice.
func (l *Log) Page(page, pageSize int, order Order) (int, []Message) {
	p := Paginate(l.entries, page, pageSize, order)
	return p.Total, p.Data
}

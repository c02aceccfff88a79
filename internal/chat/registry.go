package chat

import (
	"sort"
	"time"
)

// Participant is a connection that completed the join handshake.
type Participant struct {
	ID       string    `json:"id"`
	ShortID  string    `json:"username"`
	JoinedAt time.Time `json:"joinedAt"`

	seq uint64
}

// Registry maps connection ids to joined participants.
type Registry struct {
	byID map[string]Participant
	seq  uint64
	now  func() time.Time
}

// NewRegistry creates an empty presence registry.
func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]Participant),
		now:  time.Now,
	}
}

// Add records a participant for the connection. Adding an id that is already
// present overwrites the previous entry.
func (r *Registry) Add(connectionID string) Participant {
	r.seq++
	p := Participant{
		ID:       connectionID,
		ShortID:  ShortID(connectionID),
		JoinedAt: r.now(),
		seq:      r.seq,
	}
	r.byID[connectionID] = p
	return p
}

// Remove deletes the participant for the connection and returns it. It is a
// no-op when the connection never joined.
func (r *Registry) Remove(connectionID string) (Participant, bool) {
	p, ok := r.byID[connectionID]
	if !ok {
		return Participant{}, false
	}
	delete(r.byID, connectionID)
	return p, true
}

// Find looks up the participant for a connection id.
func (r *Registry) Find(connectionID string) (Participant, bool) {
	p, ok := r.byID[connectionID]
	return p, ok
}

// List returns a snapshot of all participants in join order.
func (r *Registry) List() []Participant {
	out := make([]Participant, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Len reports how many participants are currently joined.
func (r *Registry) Len() int {
	return len(r.byID)
}

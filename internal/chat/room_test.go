package chat_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/Tyrowin/gochat/internal/chat"
)

func newTestRoom() *chat.Room {
	clock := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	n := 0
	return chat.NewRoom(
		chat.WithClock(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}),
		chat.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
}

// TestRoomJoinPostLeave walks one participant through its lifecycle and
// checks the resulting log.
func TestRoomJoinPostLeave(t *testing.T) {
	room := newTestRoom()

	p, joined := room.Join("conn-ABC123")
	if p.ShortID != "abc123" {
		t.Errorf("ShortID = %q, want abc123", p.ShortID)
	}
	if joined.Content != "用户 abc123 加入了聊天" || !joined.IsSystem() {
		t.Errorf("join notice = %+v", joined)
	}

	msg := room.Post("conn-ABC123", "hi", nil)
	if msg.Type != chat.KindUser || msg.Username != "abc123" || msg.ID == "" {
		t.Errorf("posted message = %+v", msg)
	}

	left, ok := room.Leave("conn-ABC123")
	if !ok {
		t.Fatal("Leave() reported not joined")
	}
	if left.Content != "用户 abc123 离开了聊天" {
		t.Errorf("leave notice = %q", left.Content)
	}

	if _, ok := room.Leave("conn-ABC123"); ok {
		t.Error("second Leave() appended another notice")
	}
	if room.Messages.Len() != 3 {
		t.Errorf("log length = %d, want 3", room.Messages.Len())
	}
	if room.Participants.Len() != 0 {
		t.Errorf("registry length = %d, want 0", room.Participants.Len())
	}
}

// TestRoomMessagePageNewestFirst reproduces the moderator history view after
// one join and one chat message.
func TestRoomMessagePageNewestFirst(t *testing.T) {
	room := newTestRoom()
	room.Join("client-A-xyz789")
	room.Post("client-A-xyz789", "hi", nil)

	page := room.MessagePage(chat.NewPresenter(time.UTC), 1, 10, chat.NewestFirst)
	if page.Total != 2 {
		t.Fatalf("Total = %d, want 2", page.Total)
	}
	if page.Data[0].Content != "hi" || page.Data[0].Username != "xyz789" {
		t.Errorf("first entry = %+v, want the chat message", page.Data[0])
	}
	if page.Data[1].Username != chat.SystemLabel {
		t.Errorf("second entry username = %q, want %q", page.Data[1].Username, chat.SystemLabel)
	}
	if page.Data[1].Time != "2024/03/01 09:30:02" {
		t.Errorf("time = %q", page.Data[1].Time)
	}
}

// TestRoomNoteKick checks the kick notice wording.
func TestRoomNoteKick(t *testing.T) {
	room := newTestRoom()
	p, _ := room.Join("conn-kick01")

	msg := room.NoteKick(p)
	if msg.Content != "kick01 已被管理员移出聊天室" {
		t.Errorf("kick notice = %q", msg.Content)
	}
}

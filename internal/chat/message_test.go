package chat_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/Tyrowin/gochat/internal/chat"
)

func newLog(n int) *chat.Log {
	l := chat.NewLog()
	for i := 0; i < n; i++ {
		l.Append(chat.Message{ID: fmt.Sprintf("m%d", i), Type: chat.KindUser, Content: fmt.Sprintf("msg %d", i)})
	}
	return l
}

func ids(msgs []chat.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestLogPage covers windowing, clamping, and ordering of log pages.
func TestLogPage(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		pageSize int
		order    chat.Order
		want     []string
	}{
		{name: "first page", page: 1, pageSize: 2, order: chat.Chronological, want: []string{"m0", "m1"}},
		{name: "last partial page", page: 3, pageSize: 2, order: chat.Chronological, want: []string{"m4"}},
		{name: "beyond last page", page: 4, pageSize: 2, order: chat.Chronological, want: []string{}},
		{name: "newest first", page: 1, pageSize: 2, order: chat.NewestFirst, want: []string{"m4", "m3"}},
		{name: "newest first tail", page: 3, pageSize: 2, order: chat.NewestFirst, want: []string{"m0"}},
		{name: "zero page clamps to one", page: 0, pageSize: 2, order: chat.Chronological, want: []string{"m0", "m1"}},
		{name: "negative size clamps to one", page: 2, pageSize: -5, order: chat.Chronological, want: []string{"m1"}},
		{name: "oversized page", page: 1, pageSize: 50, order: chat.Chronological, want: []string{"m0", "m1", "m2", "m3", "m4"}},
		{name: "page offset wraps to zero", page: math.MaxInt>>2 + 2, pageSize: 8, order: chat.Chronological, want: []string{}},
		{name: "max page", page: math.MaxInt, pageSize: 2, order: chat.NewestFirst, want: []string{}},
		{name: "max page size", page: 1, pageSize: math.MaxInt, order: chat.Chronological, want: []string{"m0", "m1", "m2", "m3", "m4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLog(5)
			total, got := l.Page(tt.page, tt.pageSize, tt.order)
			if total != 5 {
				t.Errorf("total = %d, want 5", total)
			}
			if got == nil {
				t.Fatal("Page returned nil slice")
			}
			if !equalStrings(ids(got), tt.want) {
				t.Errorf("Page(%d, %d) = %v, want %v", tt.page, tt.pageSize, ids(got), tt.want)
			}
		})
	}
}

// TestLogDeleteByID verifies removal, idempotence, and unknown ids.
func TestLogDeleteByID(t *testing.T) {
	l := newLog(3)

	if l.DeleteByID("nope") {
		t.Error("DeleteByID(nope) = true, want false")
	}
	if l.Len() != 3 {
		t.Errorf("Len() = %d after missing delete, want 3", l.Len())
	}

	if !l.DeleteByID("m1") {
		t.Fatal("DeleteByID(m1) = false, want true")
	}
	if l.DeleteByID("m1") {
		t.Error("second DeleteByID(m1) = true, want false")
	}
	if l.Len() != 2 {
		t.Errorf("Len() = %d, want 2", l.Len())
	}

	_, rest := l.Page(1, 10, chat.Chronological)
	if !equalStrings(ids(rest), []string{"m0", "m2"}) {
		t.Errorf("remaining = %v, want [m0 m2]", ids(rest))
	}
}

// TestPageDoesNotAliasLog ensures callers cannot mutate the log through a page.
func TestPageDoesNotAliasLog(t *testing.T) {
	l := newLog(2)
	_, page := l.Page(1, 2, chat.Chronological)
	page[0].Content = "tampered"

	m, ok := l.Find("m0")
	if !ok {
		t.Fatal("Find(m0) failed")
	}
	if m.Content != "msg 0" {
		t.Errorf("log entry mutated through page: %q", m.Content)
	}
}

package chat_test

import (
	"testing"

	"github.com/Tyrowin/gochat/internal/chat"
)

// TestShortID verifies that the handle keeps only the lower-cased
// alphanumeric part of the last six characters.
func TestShortID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{name: "mixed punctuation", id: "AbC-123XYZ!", want: "23xyz"},
		{name: "uuid tail", id: "0f8b7a52-3c1e-4b8e-9d2f-7A1B2C3D4E5F", want: "3d4e5f"},
		{name: "shorter than six", id: "Ab1", want: "ab1"},
		{name: "empty", id: "", want: ""},
		{name: "all stripped", id: "------", want: ""},
		{name: "multibyte tail", id: "abc用户xyz", want: "cxyz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := chat.ShortID(tt.id); got != tt.want {
				t.Errorf("ShortID(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

// TestShortIDAlphabet checks determinism and the output alphabet across a
// spread of inputs.
func TestShortIDAlphabet(t *testing.T) {
	inputs := []string{"A_b.C d", "ZZZZZZZZ", "12345678", "é!@#$%^", "socket-ID_9q"}
	for _, in := range inputs {
		first := chat.ShortID(in)
		if second := chat.ShortID(in); first != second {
			t.Errorf("ShortID(%q) not deterministic: %q vs %q", in, first, second)
		}
		if len(first) > 6 {
			t.Errorf("ShortID(%q) = %q, longer than 6", in, first)
		}
		for _, r := range first {
			if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
				t.Errorf("ShortID(%q) = %q contains %q", in, first, r)
			}
		}
	}
}

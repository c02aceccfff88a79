package upload

import (
	"errors"
	"testing"
)

// TestNameRoundTrip verifies byte-exact round trips for assorted names.
func TestNameRoundTrip(t *testing.T) {
	names := []string{
		"report.pdf",
		"照片 2024.jpeg",
		"no-extension",
		"archive.tar.gz",
		".env",
		"emoji 🎉 party.png",
		"",
	}

	for _, name := range names {
		encoded := EncodeName(name)
		decoded, err := DecodeName(encoded)
		if err != nil {
			t.Errorf("DecodeName(EncodeName(%q)) error: %v", name, err)
			continue
		}
		if decoded != name {
			t.Errorf("round trip of %q gave %q", name, decoded)
		}
	}
}

// TestEncodeNameKeepsExtension checks the encoded form.
func TestEncodeNameKeepsExtension(t *testing.T) {
	if got := EncodeName("ab.txt"); got != "6162.txt" {
		t.Errorf("EncodeName(ab.txt) = %q, want 6162.txt", got)
	}
}

// TestDecodeNameRejectsInvalidHex ensures malformed names fail validation.
func TestDecodeNameRejectsInvalidHex(t *testing.T) {
	for _, bad := range []string{"zz.txt", "abc.png", "ff.bin"} {
		if _, err := DecodeName(bad); !errors.Is(err, ErrInvalidName) {
			t.Errorf("DecodeName(%q) error = %v, want ErrInvalidName", bad, err)
		}
	}
}

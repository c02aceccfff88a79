package chat

import "strings"

// shortIDLen is how many trailing characters of a connection id are kept.
const shortIDLen = 6

// ShortID derives the human-presentable handle for a connection id: the last
// six characters, lower-cased, with everything outside [a-z0-9] removed.
// Distinct connection ids may map to the same ShortID.
func ShortID(connectionID string) string {
	runes := []rune(connectionID)
	if len(runes) > shortIDLen {
		runes = runes[len(runes)-shortIDLen:]
	}

	var b strings.Builder
	b.Grow(len(runes))
	for _, r := range strings.ToLower(string(runes)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

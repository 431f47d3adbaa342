package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// DefaultTextLimit bounds stored free-text fields in runes.
const DefaultTextLimit = 10000

// TruncationMarker is appended when a text field gets cut at the limit.
const TruncationMarker = " […]"

// Text cleans a free-text field: Unicode NFC normalization, control
// characters dropped, whitespace runs collapsed to single spaces, and the
// result bounded to limit runes with a truncation marker. It never rejects.
func Text(raw string, limit int) string {
	if limit <= 0 {
		limit = DefaultTextLimit
	}

	cleaned := norm.NFC.String(raw)

	var b strings.Builder
	b.Grow(len(cleaned))
	pendingSpace := false
	for _, r := range cleaned {
		if unicode.IsSpace(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}

	out := b.String()
	runes := []rune(out)
	if len(runes) <= limit {
		return out
	}

	marker := []rune(TruncationMarker)
	cut := limit - len(marker)
	if cut < 0 {
		cut = 0
	}
	return string(runes[:cut]) + TruncationMarker
}

package normalize

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTextCollapsesWhitespace(t *testing.T) {
	t.Parallel()

	got := Text("  A   study\t\nof\r\n  something  ", 0)
	if got != "A study of something" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestTextStripsControlCharacters(t *testing.T) {
	t.Parallel()

	got := Text("brief\x00summary\x07 text", 0)
	if got != "briefsummary text" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestTextTruncates(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 200)
	got := Text(long, 50)
	if utf8.RuneCountInString(got) != 50 {
		t.Fatalf("expected 50 runes, got %d", utf8.RuneCountInString(got))
	}
	if !strings.HasSuffix(got, TruncationMarker) {
		t.Fatalf("expected truncation marker, got %q", got)
	}
}

func TestTextShortInputUntouchedByLimit(t *testing.T) {
	t.Parallel()

	got := Text("short text", 50)
	if got != "short text" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestTextNeverRejects(t *testing.T) {
	t.Parallel()

	inputs := []string{"", "\x00", strings.Repeat("\n", 1000), "é́ combined"}
	for _, raw := range inputs {
		_ = Text(raw, 10)
	}
}

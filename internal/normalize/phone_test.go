package normalize

import (
	"testing"

	"TrialsLoader/internal/domain"
)

func TestPhoneAlreadyE164(t *testing.T) {
	t.Parallel()

	got, code := Phone("+201159523871")
	if code != "" {
		t.Fatalf("unexpected code %q", code)
	}
	if got != "+201159523871" {
		t.Fatalf("unexpected number %q", got)
	}
}

func TestPhoneFormattedInternational(t *testing.T) {
	t.Parallel()

	got, code := Phone("+1 (414) 520-7097")
	if code != "" {
		t.Fatalf("unexpected code %q", code)
	}
	if got != "+14145207097" {
		t.Fatalf("unexpected number %q", got)
	}
}

func TestPhoneMissingCountryCode(t *testing.T) {
	t.Parallel()

	got, code := Phone("414-520-7097")
	if got != "" {
		t.Fatalf("expected drop, got %q", got)
	}
	if code != domain.CodePhoneUnresolvable {
		t.Fatalf("code = %q, want %q", code, domain.CodePhoneUnresolvable)
	}
}

func TestPhoneGarbage(t *testing.T) {
	t.Parallel()

	cases := []string{"+", "+12", "call the front desk", "+0000000000000000000"}
	for _, raw := range cases {
		got, code := Phone(raw)
		if got != "" {
			t.Fatalf("Phone(%q) = %q, want drop", raw, got)
		}
		if code != domain.CodePhoneUnresolvable {
			t.Fatalf("Phone(%q) code = %q, want %q", raw, code, domain.CodePhoneUnresolvable)
		}
	}
}

func TestPhoneAbsent(t *testing.T) {
	t.Parallel()

	got, code := Phone("")
	if got != "" || code != "" {
		t.Fatalf("blank phone should be absent without a code, got %q %q", got, code)
	}
}

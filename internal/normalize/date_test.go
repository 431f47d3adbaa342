package normalize

import (
	"testing"
	"time"

	"TrialsLoader/internal/domain"
)

func TestDateDayPrecision(t *testing.T) {
	t.Parallel()

	got, code := Date("2020-05-17")
	if code != "" {
		t.Fatalf("unexpected code %q", code)
	}
	if got == nil {
		t.Fatal("expected a value")
	}
	if got.Year != 2020 || got.Month != time.May || got.Day != 17 {
		t.Fatalf("unexpected value %+v", got)
	}
	if got.Precision != domain.PrecisionDay {
		t.Fatalf("expected day precision, got %s", got.Precision)
	}
}

func TestDateMonthPrecision(t *testing.T) {
	t.Parallel()

	got, code := Date("2020-05")
	if code != "" {
		t.Fatalf("unexpected code %q", code)
	}
	if got == nil {
		t.Fatal("expected a value")
	}
	if got.Year != 2020 || got.Month != time.May || got.Day != 0 {
		t.Fatalf("unexpected value %+v", got)
	}
	if got.Precision != domain.PrecisionMonth {
		t.Fatalf("expected month precision, got %s", got.Precision)
	}
	if want := time.Date(2020, time.May, 1, 0, 0, 0, 0, time.UTC); !got.Time().Equal(want) {
		t.Fatalf("Time() = %v, want %v", got.Time(), want)
	}
}

func TestDateInvalid(t *testing.T) {
	t.Parallel()

	cases := []string{"2020-13-01", "2020-02-30", "17/05/2020", "May 2020", "2020"}
	for _, raw := range cases {
		got, code := Date(raw)
		if got != nil {
			t.Fatalf("Date(%q) = %+v, want nil", raw, got)
		}
		if code != domain.CodeDateInvalid {
			t.Fatalf("Date(%q) code = %q, want %q", raw, code, domain.CodeDateInvalid)
		}
	}
}

func TestDateAbsent(t *testing.T) {
	t.Parallel()

	got, code := Date("  ")
	if got != nil || code != "" {
		t.Fatalf("blank date should be absent without a code, got %+v %q", got, code)
	}
}

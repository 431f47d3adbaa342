package normalize

import (
	"strings"
	"time"

	"TrialsLoader/internal/domain"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// Date parses registry dates in YYYY-MM-DD or YYYY-MM form, keeping the
// source precision. time.Parse rejects impossible calendar values (month 13,
// February 30th), which map to CodeDateInvalid. Empty input is simply absent.
func Date(raw string) (*domain.DateValue, string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, ""
	}

	if t, err := time.Parse(dayLayout, trimmed); err == nil {
		return &domain.DateValue{
			Year:      t.Year(),
			Month:     t.Month(),
			Day:       t.Day(),
			Precision: domain.PrecisionDay,
		}, ""
	}

	if t, err := time.Parse(monthLayout, trimmed); err == nil {
		return &domain.DateValue{
			Year:      t.Year(),
			Month:     t.Month(),
			Precision: domain.PrecisionMonth,
		}, ""
	}

	return nil, domain.CodeDateInvalid
}

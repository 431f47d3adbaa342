// Package normalize converts raw registry field values into canonical typed
// values. Every function is total: malformed input yields a nil value plus a
// reason code, never a panic and never a guess.
package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"TrialsLoader/internal/domain"
)

// agePattern matches the whole value: one number, optionally followed by one
// unit word. Anything with extra content around it ("-5 Years",
// "18 Years 6 Months") is unparseable, never a partial read.
var agePattern = regexp.MustCompile(`^(\d+)\s*(years?|months?|weeks?|days?|hours?|minutes?)?$`)

// Unit ratios for converting sub-year ages to whole years, rounding down.
const (
	monthsPerYear = 12
	weeksPerYear  = 52
	daysPerYear   = 365
)

// Age parses registry age strings such as "18 Years", "6 Months" or a bare
// integer into whole years. An empty value returns nil with no code; any
// non-empty value that cannot be read returns nil with CodeAgeUnparseable.
func Age(raw string) (*int, string) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return nil, ""
	}

	m := agePattern.FindStringSubmatch(trimmed)
	if m == nil {
		return nil, domain.CodeAgeUnparseable
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		// Digits longer than an int, e.g. garbage like "99999999999999999999".
		return nil, domain.CodeAgeUnparseable
	}

	years := n
	switch {
	case strings.HasPrefix(m[2], "month"):
		years = n / monthsPerYear
	case strings.HasPrefix(m[2], "week"):
		years = n / weeksPerYear
	case strings.HasPrefix(m[2], "day"):
		years = n / daysPerYear
	case strings.HasPrefix(m[2], "hour"), strings.HasPrefix(m[2], "minute"):
		years = 0
	}

	return &years, ""
}

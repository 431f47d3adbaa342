package normalize

import (
	"strings"

	"github.com/nyaruka/phonenumbers"

	"TrialsLoader/internal/domain"
)

// Phone normalizes a contact number to E.164. Formatting punctuation is
// stripped first; after that the number must carry an explicit country code
// prefix, since there is no locale to guess a default region from. Anything
// else resolves to CodePhoneUnresolvable and the number is dropped.
func Phone(raw string) (string, string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ""
	}

	cleaned := stripPhonePunctuation(trimmed)
	if !strings.HasPrefix(cleaned, "+") {
		return "", domain.CodePhoneUnresolvable
	}

	parsed, err := phonenumbers.Parse(cleaned, "")
	if err != nil {
		return "", domain.CodePhoneUnresolvable
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return "", domain.CodePhoneUnresolvable
	}

	return phonenumbers.Format(parsed, phonenumbers.E164), ""
}

func stripPhonePunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case ' ', '-', '.', '(', ')', '/':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

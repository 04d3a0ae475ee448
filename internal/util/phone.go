package util

import (
	"regexp"
	"strings"
)

var nonDigit = regexp.MustCompile(`\D`)

// NormalizePhone converts arbitrary phone input to the Indonesian
// international digit format used by the gateway ("628..."). Empty input and
// the placeholder "0" normalize to "". A number starting with neither "0",
// "8" nor "62" still gets "62" prepended; that is long-standing behavior the
// rest of the system depends on.
func NormalizePhone(raw string) string {
	s := nonDigit.ReplaceAllString(raw, "")

	if s == "" || s == "0" {
		return ""
	}

	switch {
	case strings.HasPrefix(s, "0"):
		s = "62" + s[1:]
	case strings.HasPrefix(s, "8"):
		s = "62" + s
	case !strings.HasPrefix(s, "62"):
		s = "62" + s
	}

	return s
}

// IsValidPhone reports whether raw can be dispatched to the gateway:
// non-empty, not the "0" placeholder, and 10 to 15 digits once normalized.
func IsValidPhone(raw string) bool {
	if raw == "" || raw == "0" {
		return false
	}

	normalized := NormalizePhone(raw)
	if len(normalized) < 10 || len(normalized) > 15 {
		return false
	}

	return true
}

package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const TextMaxLength = 2000

// NormalizeText trims and validates todo text.
func NormalizeText(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", fmt.Errorf("text is required")
	}
	if utf8.RuneCountInString(text) > TextMaxLength {
		return "", fmt.Errorf("text must be at most %d characters", TextMaxLength)
	}
	return text, nil
}

// DueDateLayouts are the accepted due date formats, tried in order.
var DueDateLayouts = []string{time.RFC3339, "2006-01-02"}

// ParseDueDate parses an RFC3339 timestamp or a YYYY-MM-DD date.
func ParseDueDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range DueDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid due date %q: expected RFC3339 or YYYY-MM-DD", raw)
}

// FormatDueDate renders a due date as YYYY-MM-DD when it falls on UTC
// midnight and as RFC3339 otherwise.
func FormatDueDate(t time.Time) string {
	t = t.UTC()
	if t.Equal(t.Truncate(24 * time.Hour)) {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}

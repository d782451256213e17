package api

import (
	"net/http"
	"strings"
)

// WarningHeader carries non-fatal failures next to a successful response.
const WarningHeader = "Warning"

const warningPrefix = `199 tasklet "`

// FormatWarning renders msg as a miscellaneous (199) warning value.
func FormatWarning(msg string) string {
	msg = strings.NewReplacer(`"`, `'`, "\r", " ", "\n", " ").Replace(msg)
	return warningPrefix + msg + `"`
}

// ParseWarnings extracts messages written by FormatWarning.
func ParseWarnings(h http.Header) []string {
	var out []string
	for _, value := range h.Values(WarningHeader) {
		value = strings.TrimSpace(value)
		if !strings.HasPrefix(value, warningPrefix) || !strings.HasSuffix(value, `"`) {
			continue
		}
		out = append(out, strings.TrimSuffix(strings.TrimPrefix(value, warningPrefix), `"`))
	}
	return out
}

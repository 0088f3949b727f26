package logging

import (
	"log/slog"
	"strings"
)

// RedactedValue replaces secrets in log output.
const RedactedValue = "[REDACTED]"

var sensitiveKeys = map[string]struct{}{
	"authorization": {},
	"token":         {},
	"jwt_secret":    {},
	"dsn":           {},
	"password":      {},
}

// IsSensitive reports whether values logged under key must be masked.
func IsSensitive(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(strings.TrimSpace(key))]
	return ok
}

// Field builds a string attribute, masking it when the key is sensitive.
func Field(key, value string) slog.Attr {
	if strings.TrimSpace(value) == "" || !IsSensitive(key) {
		return slog.String(key, value)
	}
	return slog.String(key, RedactedValue)
}

// MaskDSN strips credentials from a database connection string while keeping
// the driver and host visible.
func MaskDSN(dsn string) string {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return trimmed
	}
	scheme, rest, ok := strings.Cut(trimmed, "://")
	if !ok {
		if strings.Contains(trimmed, "password=") {
			return RedactedValue
		}
		return trimmed
	}
	at := strings.LastIndex(rest, "@")
	if at < 0 {
		return trimmed
	}
	return scheme + "://" + RedactedValue + rest[at:]
}

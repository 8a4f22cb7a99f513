package operation

import "strings"

// RedactionMarker replaces values of sensitive fields in log output.
const RedactionMarker = "[REDACTED]"

// TruncationMarker terminates strings cut at maxStringLen.
const TruncationMarker = "...[TRUNCATED]"

// maxStringLen is the longest string value emitted verbatim in logs.
const maxStringLen = 100

// sensitiveKeys drive redaction. Matching is case-insensitive and applies
// when a field name contains one of these substrings.
var sensitiveKeys = []string{
	"password",
	"token",
	"apikey",
	"api_key",
	"secret",
	"credential",
	"hash",
	"salt",
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// Sanitize returns a copy of v safe for logging: sensitive fields are
// replaced by RedactionMarker, long strings are truncated, and the rules
// recurse through nested maps and slices. The input is never mutated.
func Sanitize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if isSensitiveKey(k) {
				out[k] = RedactionMarker
				continue
			}
			out[k] = Sanitize(item)
		}
		return out

	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Sanitize(item)
		}
		return out

	case string:
		if len(val) > maxStringLen {
			return val[:maxStringLen] + TruncationMarker
		}
		return val

	default:
		return v
	}
}

package logging

import (
	"strings"
	"unicode"
)

// redactedValue replaces the value of a sensitive key.
const redactedValue = "[REDACTED]"

// sensitiveSegments are key segments whose values never reach a log file.
// Besides credentials, this covers notification content and patient details,
// which may carry protected health information.
var sensitiveSegments = map[string]bool{
	// credentials
	"secret": true, "password": true, "token": true, "key": true, "auth": true, "credential": true,
	// notification content
	"title": true, "message": true, "body": true,
	// patient details
	"patient": true, "dob": true, "phone": true, "ssn": true, "mrn": true, "address": true, "email": true,
}

// redact returns a copy of the flattened key-value pairs with the values of
// sensitive keys replaced. A key is sensitive when any of its segments,
// split on non-alphanumerics, is in sensitiveSegments: "patient_name" and
// "auth-token" are, "monkey" and "titles" are not.
func redact(pairs []any) []any {
	if len(pairs) < 2 {
		return pairs
	}
	out := make([]any, len(pairs))
	copy(out, pairs)
	for i := 0; i+1 < len(out); i += 2 {
		if key, ok := out[i].(string); ok && isSensitiveKey(key) {
			out[i+1] = redactedValue
		}
	}
	return out
}

func isSensitiveKey(key string) bool {
	segments := strings.FieldsFunc(strings.ToLower(key), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, s := range segments {
		if sensitiveSegments[s] {
			return true
		}
	}
	return false
}

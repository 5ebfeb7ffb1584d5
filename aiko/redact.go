package aiko

import (
	"encoding/base64"
	"regexp"
	"strings"
)

const redactionMask = "[REDACTED]"

var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"passwd":        {},
	"secret":        {},
	"token":         {},
	"api_key":       {},
	"apikey":        {},
	"access_token":  {},
	"refresh_token": {},
	"authorization": {},
	"cookie":        {},
	"email":         {},
	"phonenumber":   {},
	"ssn":           {},
	"creditcard":    {},
	"ip":            {},
	"client-ip":     {},
}

var piiPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[\w\.-]+@[\w\.-]+\.[A-Za-z]{2,}`),
	regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
	regexp.MustCompile(`(?i)\b(?:[A-F0-9]{1,4}:){2,7}[A-F0-9]{1,4}\b`),
}

// RedactStructured returns a copy of data with sensitive keys masked and
// e-mail or IP addresses in string values replaced.
func RedactStructured(data Structured) Structured {
	if data == nil {
		return nil
	}
	return Structured(redactMap(data))
}

func redactMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, val := range in {
		if isSensitiveKey(key) {
			out[key] = redactionMask
			continue
		}
		out[key] = redactValue(val)
	}
	return out
}

func redactValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return redactMap(v)
	case Structured:
		return redactMap(v)
	case map[string]string:
		out := make(map[string]any, len(v))
		for key, val := range v {
			if isSensitiveKey(key) {
				out[key] = redactionMask
			} else {
				out[key] = redactString(val)
			}
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = redactValue(item)
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = redactString(item)
		}
		return out
	case string:
		return redactString(v)
	case []byte:
		return map[string]string{"base64": base64.StdEncoding.EncodeToString(v)}
	default:
		return value
	}
}

func isSensitiveKey(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(key)]
	return ok
}

func redactString(s string) string {
	masked := s
	for _, rx := range piiPatterns {
		masked = rx.ReplaceAllString(masked, redactionMask)
	}
	return masked
}

package aiko

import "strings"

const eventsPath = "/api/events"

// normalizeBaseURL strips exactly one trailing slash.
func normalizeBaseURL(raw string) string {
	return strings.TrimSuffix(raw, "/")
}

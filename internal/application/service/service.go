// Package service contains the entity services: one per document collection,
// each owning a per-user in-memory mirror of the remote data.
package service

import (
	"regexp"
	"time"
)

// dateKeyFormat is the wire format for day fields inside document payloads.
// RFC3339 UTC strings compare lexicographically in date order, which the
// month range queries rely on.
const dateKeyFormat = time.RFC3339

// hexColorRegex validates #RRGGBB / #RGB colors.
var hexColorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

// isValidHexColor validates hex color format (#XXXXXX or #XXX).
func isValidHexColor(color string) bool {
	return hexColorRegex.MatchString(color)
}

// mirrorState tracks one user's cached items together with fetch status.
type mirrorState[T any] struct {
	items   []T
	loading bool
	lastErr error
}

// formatDateKey renders a day as its stored payload value.
func formatDateKey(t time.Time) string {
	return t.UTC().Format(dateKeyFormat)
}

// parseDateKey parses a stored day value, zero time on malformed input.
func parseDateKey(s string) time.Time {
	t, err := time.Parse(dateKeyFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

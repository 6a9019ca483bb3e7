package console

import "strings"

const (
	thoughtMarker     = "Thought:"
	actionMarker      = "Action:"
	actionInputMarker = "Action Input:"

	// Reasoning shorter than this after cleaning is considered noise and the
	// entry is suppressed rather than shown.
	minThoughtLength = 5

	truncationMarker = "... [truncated]"
)

// CleanReasoningText extracts the thought portion of a reasoning trace that
// may also embed an action directive. If a Thought: marker is present, the
// text up to (not including) the action marker is returned; otherwise any
// trailing Action / Action Input block is stripped. Whitespace is collapsed.
// Returns empty string when the remainder is too short to be a meaningful
// thought or is just the literal fragment "Action"; callers must then
// suppress or discard the entry. Never fails; empty input yields empty output.
func CleanReasoningText(raw string) string {
	text := raw

	if idx := strings.Index(text, thoughtMarker); idx != -1 {
		text = text[idx+len(thoughtMarker):]
		if cut := earliestMarker(text, actionMarker, actionInputMarker); cut != -1 {
			text = text[:cut]
		}
	} else if cut := earliestMarker(text, actionMarker, actionInputMarker); cut != -1 {
		text = text[:cut]
	}

	text = strings.Join(strings.Fields(text), " ")

	if len(text) < minThoughtLength || text == "Action" {
		return ""
	}
	return text
}

// earliestMarker returns the lowest index of any of the markers in s, or -1.
func earliestMarker(s string, markers ...string) int {
	cut := -1
	for _, m := range markers {
		if idx := strings.Index(s, m); idx != -1 && (cut == -1 || idx < cut) {
			cut = idx
		}
	}
	return cut
}

// Truncate returns text unchanged when within limit, otherwise the first
// limit characters plus a visible truncation marker.
func Truncate(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	return text[:limit] + truncationMarker
}

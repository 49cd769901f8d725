package parser

import (
	"errors"
	"strings"
)

// ErrNoJSON is returned when a reply contains nothing that looks like a
// JSON array.
var ErrNoJSON = errors.New("no JSON array found in reply")

// ExtractJSON returns the part of a model reply that should hold the edit
// batch. A fenced block tagged json wins, then any fence whose body starts
// with '['; otherwise the text from the first '[' to the last ']' is used.
func ExtractJSON(reply string) (string, error) {
	src := []byte(reply)
	if body, ok := fencedPayload(src, "json"); ok {
		return body, nil
	}
	if body, ok := fencedPayload(src, ""); ok {
		return body, nil
	}

	start := strings.Index(reply, "[")
	if start < 0 {
		return "", ErrNoJSON
	}
	end := strings.LastIndex(reply, "]")
	if end < start {
		// Unterminated; let the decoder report it.
		return strings.TrimSpace(reply[start:]), nil
	}
	return reply[start : end+1], nil
}

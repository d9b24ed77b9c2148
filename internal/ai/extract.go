package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON recovers a single JSON object from a raw model completion that
// may be wrapped in markdown fences or surrounding prose. Attempts in order:
//
//  1. content of a ```-fenced block (optionally tagged json)
//  2. the whole trimmed text
//  3. the substring from the first '{' to the last '}'
//
// The ordering matters: models routinely fence valid JSON or prepend a
// sentence before the object. No schema validation happens here — structural
// validity is the only guarantee.
func ExtractJSON(raw string) (json.RawMessage, error) {
	candidate := strings.TrimSpace(raw)
	if fenced, ok := fencedContent(candidate); ok {
		if obj, err := parseObject(fenced); err == nil {
			return obj, nil
		}
		// Fall through: fences may wrap commentary instead of the object.
	}

	if obj, err := parseObject(candidate); err == nil {
		return obj, nil
	}

	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}
	obj, err := parseObject(candidate[start : end+1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return obj, nil
}

// fencedContent returns the inside of the first triple-backtick block.
func fencedContent(s string) (string, bool) {
	open := strings.Index(s, "```")
	if open == -1 {
		return "", false
	}
	rest := s[open+3:]
	// Drop an optional language tag on the opening fence line.
	if nl := strings.IndexByte(rest, '\n'); nl != -1 {
		tag := strings.TrimSpace(rest[:nl])
		if tag == "" || strings.EqualFold(tag, "json") {
			rest = rest[nl+1:]
		}
	}
	closing := strings.Index(rest, "```")
	if closing == -1 {
		return "", false
	}
	return strings.TrimSpace(rest[:closing]), true
}

// parseObject accepts s only if it is a complete JSON object.
func parseObject(s string) (json.RawMessage, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &probe); err != nil {
		return nil, err
	}
	return json.RawMessage(s), nil
}

// Package jsonutil recovers structured data from generative model output.
// Models sometimes wrap their JSON in prose or code fences despite being
// instructed not to, so a strict parse is tried first and a lenient brace
// match second.
package jsonutil

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ParseError means both the strict and lenient extraction attempts failed.
// Err is the error from the strict attempt on the original text.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string { return "jsonutil: no parseable JSON object: " + e.Err.Error() }

func (e *ParseError) Unwrap() error { return e.Err }

// Greedy: the first { through the last } of the text, so nested objects stay
// intact even when prose follows the payload.
var braceRe = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractStructured parses raw as a T. It trims the text and tries a strict
// parse first; on failure it retries on the first {...} substring. Field
// presence is the caller's concern, no schema validation happens here.
func ExtractStructured[T any](raw string) (T, error) {
	var out T
	trimmed := strings.TrimSpace(raw)
	strictErr := json.Unmarshal([]byte(trimmed), &out)
	if strictErr == nil {
		return out, nil
	}
	if sub := braceRe.FindString(trimmed); sub != "" {
		var retry T
		if err := json.Unmarshal([]byte(sub), &retry); err == nil {
			return retry, nil
		}
	}
	var zero T
	return zero, &ParseError{Raw: raw, Err: strictErr}
}

// Package extract locates and parses a JSON object embedded in free-text
// model output. Models routinely wrap JSON in markdown fences or surround it
// with prose; the extraction order here is load-bearing and must not change.
package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
)

var fencedJSONPattern = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// Object extracts a JSON object from raw model text.
//
// Precedence: a fenced ```json block wins over any stray braces elsewhere in
// the text. Without a fence, the substring from the first '{' to the last '}'
// inclusive is taken. The two failure modes stay distinct: no candidate at
// all is domain.ErrNoJSONFound, a candidate that does not parse is
// domain.ErrParseFailed. A partially valid object is never returned.
func Object(raw string) (json.RawMessage, error) {
	candidate, err := locate(raw)
	if err != nil {
		return nil, err
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &probe); err != nil {
		return nil, domain.WrapError(domain.ErrParseFailed, "extract json object", err)
	}
	return json.RawMessage(candidate), nil
}

func locate(raw string) (string, error) {
	if match := fencedJSONPattern.FindStringSubmatch(raw); match != nil {
		return strings.TrimSpace(match[1]), nil
	}

	first := strings.Index(raw, "{")
	last := strings.LastIndex(raw, "}")
	if first >= 0 && last >= 0 {
		if last < first {
			// Both braces exist but out of order; the candidate is empty and
			// fails at the parse step, not the locate step.
			return "", nil
		}
		return strings.TrimSpace(raw[first : last+1]), nil
	}

	return "", fmt.Errorf("extract json object: %w", domain.ErrNoJSONFound)
}

package llm

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/rotisserie/eris"
)

// DecodeObject parses model output into a JSON object. It tolerates code
// fences, surrounding prose, double-encoded strings and malformed JSON that
// jsonrepair can fix.
func DecodeObject(raw string) (map[string]any, error) {
	s := extractJSON(raw)
	if s == "" {
		return nil, eris.New("llm: empty response")
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(s), &out); err == nil {
		return nonNil(out), nil
	}

	var asString string
	if err := json.Unmarshal([]byte(s), &asString); err == nil {
		asString = strings.TrimSpace(asString)
		if err := json.Unmarshal([]byte(asString), &out); err == nil {
			return nonNil(out), nil
		}
		s = asString
	}

	s = stripDuplicateLeadingBrace(s)
	repaired, err := jsonrepair.JSONRepair(s)
	if err != nil {
		return nil, eris.Wrap(err, "llm: json repair")
	}
	if err := json.Unmarshal([]byte(repaired), &out); err != nil {
		return nil, eris.Wrap(err, "llm: unmarshal repaired json")
	}
	return nonNil(out), nil
}

func nonNil(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// extractJSON strips markdown fences and any prose around the outermost
// JSON object.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "\"") {
		return s
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

func stripDuplicateLeadingBrace(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") {
		rest := strings.TrimSpace(s[1:])
		if strings.HasPrefix(rest, "{") {
			return rest
		}
	}
	return s
}

// CleanText trims whitespace, code fences and wrapping quotes from a text
// response.
func CleanText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

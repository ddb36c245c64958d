// Package strlist converts ordered string lists (skills, technologies) to and
// from the JSON text stored in the database.
package strlist

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Encode renders items as a JSON array. A nil slice encodes as "[]".
// HTML characters are kept literal so the stored text stays searchable.
func Encode(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(items); err != nil {
		return "[]"
	}
	return strings.TrimRight(buf.String(), "\n")
}

// Decode parses a stored list. Empty input yields an empty, non-nil slice.
// Values that are not a JSON array of strings are treated as a legacy
// comma-separated list.
func Decode(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return []string{}
	}

	var out []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &out); err == nil {
			if out == nil {
				return []string{}
			}
			return out
		}
	}

	return splitLegacy(raw)
}

// Normalize trims every item and drops empty ones, preserving order and
// duplicates.
func Normalize(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		out = append(out, it)
	}
	return out
}

func splitLegacy(raw string) []string {
	return Normalize(strings.Split(raw, ","))
}

package service

import "strings"

// MaxTagsPerQuestion caps how many tags a question carries regardless of
// how many comma-separated entries were submitted.
const MaxTagsPerQuestion = 5

// ParseTagNames splits a raw comma-separated tag string into clean tag
// names: whitespace trimmed, empties dropped, input order preserved,
// capped at MaxTagsPerQuestion. Distinct strings are not deduplicated
// further.
func ParseTagNames(raw string) []string {
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		name := strings.TrimSpace(p)
		if name == "" {
			continue
		}
		names = append(names, name)
		if len(names) == MaxTagsPerQuestion {
			break
		}
	}
	return names
}

package client

import (
	"encoding/json"
	"strings"

	"donorhub/internal/domain"
)

// pathAliases returns the priority-ordered path aliases for a collection.
// The recommendations resource has shipped under three names over time and
// a deployment may expose any of them; the canonical path is tried first.
func pathAliases(c domain.Collection) []string {
	if c == domain.CollectionRecommendations {
		return []string{"/api/recommendations", "/api/contact", "/api/contacts"}
	}
	return []string{"/api/" + string(c)}
}

// candidates builds the ordered list of absolute URLs to probe: the
// configured base crossed with the path aliases, then the same aliases
// against each fallback origin (the same-origin fallback for deployments
// where the override points at a dead host).
func candidates(c domain.Collection, base string, fallbacks []string) []string {
	var out []string
	for _, origin := range append([]string{base}, fallbacks...) {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "" {
			continue
		}
		for _, path := range pathAliases(c) {
			out = append(out, origin+path)
		}
	}
	return out
}

// conventional wrapper keys, probed in order after the collection's own name.
var wrapperKeys = []string{"items", "data", "records"}

// normalizeRecords maps the closed set of accepted response shapes onto the
// canonical record list: a bare array, or an object wrapping an array under
// a conventional key. Any other parseable payload normalizes to empty
// rather than failing. The second return is false only when the payload is
// not valid JSON at all.
func normalizeRecords(raw []byte, c domain.Collection) ([]domain.Record, bool) {
	var records []domain.Record
	if err := json.Unmarshal(raw, &records); err == nil {
		return records, true
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, false
	}
	for _, key := range append([]string{string(c)}, wrapperKeys...) {
		inner, ok := wrapped[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(inner, &records); err == nil {
			return records, true
		}
	}
	return []domain.Record{}, true
}

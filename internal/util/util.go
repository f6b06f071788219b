// Package util provides common utility functions used across the plan repository.
package util

import "strings"

// SplitTerms splits a comma-separated filter string into trimmed,
// lower-cased search terms, dropping empty ones.
func SplitTerms(filter string) []string {
	var terms []string
	for _, raw := range strings.Split(filter, ",") {
		term := strings.ToLower(strings.TrimSpace(raw))
		if term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

// MatchStrings reports whether every term in the comma-separated filter is
// a case-insensitive substring of at least one of the values. An empty
// filter matches everything.
func MatchStrings(filter string, values ...string) bool {
	terms := SplitTerms(filter)
	if len(terms) == 0 {
		return true
	}

	lowered := make([]string, 0, len(values))
	for _, v := range values {
		lowered = append(lowered, strings.ToLower(v))
	}

	for _, term := range terms {
		found := false
		for _, v := range lowered {
			if strings.Contains(v, term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// JoinNotEmpty joins the non-empty values with the separator.
func JoinNotEmpty(values []string, sep string) string {
	var kept []string
	for _, v := range values {
		if v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, sep)
}

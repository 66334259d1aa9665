package models

import "strings"

// DefaultCategory is assigned when no provider produces a usable label.
const DefaultCategory = "Culture"

// Categories is the closed taxonomy accepted by the publishing endpoint.
// Labels are case-sensitive on the wire.
var Categories = []string{
	"Architecture", "Arts", "Business", "Culture", "Dance", "Economics",
	"Education", "Engineering", "Entertainment", "Environment", "Fashion",
	"Film", "Food", "Geography", "History", "Literature", "Medicine",
	"Music", "Philosophy", "Politics", "Psychology", "Religion", "Science",
	"Sports", "Technology", "Theater", "Transportation",
}

// MatchCategory returns the canonical casing for a label, or the empty
// string when the label is not in the taxonomy. Matching is case-insensitive
// after trimming.
func MatchCategory(raw string) string {
	candidate := strings.TrimSpace(raw)
	for _, c := range Categories {
		if strings.EqualFold(candidate, c) {
			return c
		}
	}
	return ""
}

// NormalizeCategory maps arbitrary provider output onto the closed set.
// Anything that does not match a set member collapses to DefaultCategory.
func NormalizeCategory(raw string) string {
	if c := MatchCategory(raw); c != "" {
		return c
	}
	return DefaultCategory
}

// IsValidCategory reports whether label is an exact member of the taxonomy.
func IsValidCategory(label string) bool {
	for _, c := range Categories {
		if c == label {
			return true
		}
	}
	return false
}

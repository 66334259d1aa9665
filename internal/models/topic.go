package models

import (
	"regexp"
	"strings"
)

// trailingMagnitude matches the tweet-volume suffix that trend sources
// append to labels, e.g. "NBA 176K" or "Bitcoin 2M". A bare trailing digit
// run (years, jersey numbers) is stripped too; a topic that is nothing but
// digits would otherwise survive and is rejected downstream when no article
// title remains.
var trailingMagnitude = regexp.MustCompile(`\d+[KkMm]?\s*$`)

// NormalizeTopic cleans a raw trend label into a lookup key: the trailing
// magnitude run goes first, then leading hashtags, then surrounding space.
func NormalizeTopic(raw string) string {
	clean := trailingMagnitude.ReplaceAllString(raw, "")
	clean = strings.TrimLeft(clean, "#")
	return strings.TrimSpace(clean)
}

// TopicTitle converts a normalized topic into a wiki article title.
func TopicTitle(topic string) string {
	return strings.ReplaceAll(NormalizeTopic(topic), " ", "_")
}

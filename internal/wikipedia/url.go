package wikipedia

import (
	"net/url"
	"strings"

	"github.com/niyoseris/roller/internal/models"
)

// BaseURL is the article base for synthesized reference URLs.
const BaseURL = "https://en.wikipedia.org"

// SynthesizeURL derives a reference URL deterministically from a raw topic
// label when no resolver produced one: the trailing magnitude run is
// stripped, then leading hashtags, then spaces become underscores. A purely
// numeric topic collapses to an empty title and is rejected downstream when
// the summary fetch finds no article.
func SynthesizeURL(topic string) string {
	return BaseURL + "/wiki/" + models.TopicTitle(topic)
}

// TitleFromURL extracts the article title from a /wiki/ URL, with
// underscores restored to spaces for the query API.
func TitleFromURL(ref string) string {
	idx := strings.LastIndex(ref, "/wiki/")
	if idx < 0 {
		return ""
	}
	title := ref[idx+len("/wiki/"):]
	if decoded, err := url.PathUnescape(title); err == nil {
		title = decoded
	}
	return strings.ReplaceAll(title, "_", " ")
}

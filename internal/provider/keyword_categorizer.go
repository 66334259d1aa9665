package provider

import (
	"context"
	"strings"

	"github.com/niyoseris/roller/internal/models"
)

// categoryKeywords scores topics against each category by simple keyword
// hits over the topic name and article summary. Last rung of the
// categorization chain; always available, never errors.
var categoryKeywords = map[string][]string{
	"Politics":       {"election", "president", "congress", "senate", "government", "politician", "vote", "policy"},
	"Sports":         {"nfl", "nba", "mlb", "nhl", "soccer", "football", "basketball", "baseball", "championship", "team", "player"},
	"Entertainment":  {"movie", "celebrity", "actor", "actress", "hollywood", "show", "series", "streaming"},
	"Music":          {"singer", "album", "song", "concert", "band", "musician", "grammy"},
	"Technology":     {"tech", "ai", "software", "apple", "google", "microsoft", "app", "smartphone", "computer"},
	"Business":       {"company", "ceo", "stock", "market", "economy", "trade", "business", "corporation"},
	"Science":        {"research", "study", "scientist", "space", "nasa", "discovery", "vaccine"},
	"Medicine":       {"health", "doctor", "hospital", "disease", "medical", "treatment", "patient"},
	"Film":           {"film", "director", "cinema", "oscar", "box office"},
	"Geography":      {"country", "city", "island", "mountain", "river", "continent"},
	"History":        {"war", "historical", "ancient", "century", "era"},
	"Food":           {"restaurant", "chef", "recipe", "cooking", "cuisine"},
	"Fashion":        {"fashion", "designer", "model", "clothing", "style"},
	"Environment":    {"climate", "environment", "pollution", "nature", "wildlife"},
	"Arts":           {"art", "artist", "painting", "sculpture", "gallery", "museum"},
	"Literature":     {"author", "book", "novel", "writer", "poetry"},
	"Religion":       {"church", "religious", "faith", "christian", "islam", "buddhist"},
	"Education":      {"school", "university", "college", "education", "student", "teacher"},
	"Transportation": {"car", "automobile", "flight", "train", "transportation", "vehicle"},
}

// KeywordCategorizer is the offline categorization fallback.
type KeywordCategorizer struct{}

// NewKeywordCategorizer returns the keyword-scoring categorizer.
func NewKeywordCategorizer() *KeywordCategorizer { return &KeywordCategorizer{} }

func (k *KeywordCategorizer) Name() string { return "keyword-scoring" }

func (k *KeywordCategorizer) Available(ctx context.Context) bool { return true }

// Invoke scores every category against the combined topic and summary text
// and returns the best hit, or the default category when nothing matches.
func (k *KeywordCategorizer) Invoke(ctx context.Context, in CategorizeInput) (string, error) {
	combined := strings.ToLower(in.Topic) + " " + strings.ToLower(in.Summary)

	best := ""
	bestScore := 0
	for category, keywords := range categoryKeywords {
		score := 0
		for _, kw := range keywords {
			if strings.Contains(combined, kw) {
				score++
			}
		}
		if score > bestScore || (score == bestScore && score > 0 && category < best) {
			best = category
			bestScore = score
		}
	}

	if bestScore == 0 {
		return models.DefaultCategory, nil
	}
	return best, nil
}

package social

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"log/slog"

	"github.com/niyoseris/roller/internal/models"
)

const (
	articleURLFormat = "https://roll.wiki/summary/%d"
	tweetLimit       = 280
)

// categoryHashtags maps article categories to the hashtag pool appended to
// announcements. Unknown categories fall back to a generic set.
var categoryHashtags = map[string]string{
	"Politics":      "#Politics #News #Breaking #WorldNews #Government",
	"Sports":        "#Sports #Game #Victory #Championship #Athletes",
	"Entertainment": "#Entertainment #Celebrity #Movies #TV #Shows",
	"Music":         "#Music #NewMusic #Artist #Song #Concert",
	"Technology":    "#Tech #Innovation #AI #Technology #Digital",
	"Business":      "#Business #Economy #Finance #Markets #Investing",
	"Science":       "#Science #Research #Discovery #Innovation #STEM",
	"Medicine":      "#Health #Medicine #Healthcare #Wellness #Medical",
	"Film":          "#Film #Movies #Cinema #Hollywood #BoxOffice",
	"Food":          "#Food #Foodie #Cooking #Recipe #Delicious",
	"Fashion":       "#Fashion #Style #Trend #Designer #OOTD",
	"Environment":   "#Climate #Environment #Sustainability #GreenEnergy",
	"Arts":          "#Art #Artist #Creative #Design #Gallery",
	"Literature":    "#Books #Reading #Author #Literature #BookLovers",
	"Education":     "#Education #Learning #Students #Knowledge #School",
	"Culture":       "#Culture #Society #History #Tradition #Heritage",
}

const defaultHashtags = "#Trending #News #Viral"

// TweetPoster is the part of the Twitter client the announcer needs.
type TweetPoster interface {
	PostTweet(ctx context.Context, text string) (string, error)
}

// Announcer publishes short announcement tweets for trends whose articles
// were accepted by the summary service.
type Announcer struct {
	poster  TweetPoster
	enabled bool
	logger  *slog.Logger
}

// NewAnnouncer creates an announcer. When enabled is false or poster is nil,
// Announce becomes a no-op.
func NewAnnouncer(poster TweetPoster, enabled bool, logger *slog.Logger) *Announcer {
	return &Announcer{
		poster:  poster,
		enabled: enabled && poster != nil,
		logger:  logger,
	}
}

// Enabled reports whether announcements will actually be posted.
func (a *Announcer) Enabled() bool {
	return a.enabled
}

// ArticleURL returns the public summary page for an article ID.
func ArticleURL(articleID int) string {
	return fmt.Sprintf(articleURLFormat, articleID)
}

// ComposeTweet builds the announcement text for a trend. The template is
// chosen deterministically from the topic so retries produce the same text.
func ComposeTweet(topic, category string, articleID int) string {
	clean := models.NormalizeTopic(topic)
	link := ArticleURL(articleID)

	hashtags, ok := categoryHashtags[category]
	if !ok {
		hashtags = defaultHashtags
	}
	pool := strings.Fields(hashtags)
	if len(pool) > 3 {
		pool = pool[:3]
	}
	tags := strings.Join(pool, " ")

	templates := []string{
		fmt.Sprintf("🔥 Trending: %s\n📖 Learn more %s\n🔗 %s", clean, tags, link),
		fmt.Sprintf("📰 What's %s?\n✨ Quick summary %s\n🔗 %s", clean, tags, link),
		fmt.Sprintf("🌟 %s explained\n💡 Everything you need to know %s\n🔗 %s", clean, tags, link),
		fmt.Sprintf("🚀 %s is trending!\n📚 Read the full story %s\n🔗 %s", clean, tags, link),
		fmt.Sprintf("💬 Everyone's talking about %s\n📖 Get informed %s\n🔗 %s", clean, tags, link),
	}

	h := fnv.New32a()
	h.Write([]byte(clean))
	pick := templates[int(h.Sum32())%len(templates)]
	if len(pick) <= tweetLimit {
		return pick
	}
	for _, t := range templates {
		if len(t) <= tweetLimit {
			return t
		}
	}

	short := "#Trending"
	if len(pool) > 0 {
		short = pool[0]
	}
	return fmt.Sprintf("🔥 %s\n%s\n🔗 %s", clean, short, link)
}

// Announce posts an announcement for a processed trend. It returns true only
// when a tweet was actually published. Trends without an article ID are
// skipped because there is no summary page to link to.
func (a *Announcer) Announce(ctx context.Context, topic, category string, articleID int) (bool, error) {
	if !a.enabled {
		return false, nil
	}
	if articleID == 0 {
		a.logger.Debug("skipping announcement, no article id", "topic", topic)
		return false, nil
	}

	text := ComposeTweet(topic, category, articleID)
	tweetID, err := a.poster.PostTweet(ctx, text)
	if err != nil {
		return false, fmt.Errorf("failed to announce %q: %w", topic, err)
	}

	a.logger.Info("trend announced",
		"topic", topic,
		"category", category,
		"article_id", articleID,
		"tweet_id", tweetID)
	return true, nil
}

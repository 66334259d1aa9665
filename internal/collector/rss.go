package collector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmcdole/gofeed"
)

const (
	// GoogleTrendsFeed is the daily trending-searches RSS feed for the US.
	GoogleTrendsFeed = "https://trends.google.com/trending/rss?geo=US"

	// RedditPopularFeed surfaces the titles currently on r/popular.
	RedditPopularFeed = "https://www.reddit.com/r/popular/.rss"
)

// FeedCollector reads trend labels from an RSS or Atom feed: one topic per
// item title. Site-specific page scraping lives outside this service; feeds
// are the only collection surface.
type FeedCollector struct {
	name   string
	url    string
	parser *gofeed.Parser
	logger *slog.Logger
}

// NewFeedCollector builds a collector for one feed URL.
func NewFeedCollector(name, url string, logger *slog.Logger) *FeedCollector {
	return &FeedCollector{
		name:   name,
		url:    url,
		parser: gofeed.NewParser(),
		logger: logger,
	}
}

func (c *FeedCollector) Name() string { return c.name }

// Collect fetches and parses the feed, returning raw item titles.
func (c *FeedCollector) Collect(ctx context.Context) ([]string, error) {
	feed, err := c.parser.ParseURLWithContext(c.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", c.url, err)
	}

	labels := make([]string, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Title != "" {
			labels = append(labels, item.Title)
		}
	}
	c.logger.Debug("feed fetched", "collector", c.name, "items", len(labels))
	return labels, nil
}

// DefaultCollectors returns the standard trend sources.
func DefaultCollectors(logger *slog.Logger) []Collector {
	return []Collector{
		NewFeedCollector("google-trends", GoogleTrendsFeed, logger),
		NewFeedCollector("reddit-popular", RedditPopularFeed, logger),
	}
}

// Package collector gathers candidate trending topics from public feeds.
// Collectors are best-effort: a failing source is logged and skipped, and
// the union of all sources is de-duplicated after normalization.
package collector

import (
	"context"
	"log/slog"

	"github.com/niyoseris/roller/internal/models"
)

// Collector is one trend source.
type Collector interface {
	Name() string
	Collect(ctx context.Context) ([]string, error)
}

// Set runs a group of collectors and merges their output.
type Set struct {
	collectors   []Collector
	maxPerSource int
	logger       *slog.Logger
}

// NewSet groups collectors. maxPerSource caps how many topics each source
// may contribute; zero means no cap.
func NewSet(logger *slog.Logger, maxPerSource int, collectors ...Collector) *Set {
	return &Set{
		collectors:   collectors,
		maxPerSource: maxPerSource,
		logger:       logger,
	}
}

// CollectAll fetches from every collector sequentially, normalizes labels,
// and returns the de-duplicated union in first-seen order. Individual
// collector failures never fail the call.
func (s *Set) CollectAll(ctx context.Context) []string {
	seen := map[string]struct{}{}
	var topics []string

	for _, c := range s.collectors {
		raw, err := c.Collect(ctx)
		if err != nil {
			s.logger.Error("trend collection failed", "collector", c.Name(), "error", err)
			continue
		}
		if s.maxPerSource > 0 && len(raw) > s.maxPerSource {
			raw = raw[:s.maxPerSource]
		}

		added := 0
		for _, label := range raw {
			topic := models.NormalizeTopic(label)
			if topic == "" {
				continue
			}
			if _, dup := seen[topic]; dup {
				continue
			}
			seen[topic] = struct{}{}
			topics = append(topics, topic)
			added++
		}
		s.logger.Info("collected trends", "collector", c.Name(), "raw", len(raw), "added", added)
	}

	return topics
}

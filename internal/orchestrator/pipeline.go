package orchestrator

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/niyoseris/roller/internal/models"
	"github.com/niyoseris/roller/internal/provider"
	"github.com/niyoseris/roller/internal/publisher"
	"github.com/niyoseris/roller/internal/storage"
	"github.com/niyoseris/roller/internal/wikipedia"
)

// SummaryFetcher retrieves the intro extract for an article title.
type SummaryFetcher interface {
	Summary(ctx context.Context, title string) (string, error)
}

// Submitter sends a resolved article to the summarization service.
type Submitter interface {
	Submit(ctx context.Context, referenceURL, category string) (publisher.Result, error)
}

// Announcer posts a social announcement for a published article.
type Announcer interface {
	Announce(ctx context.Context, topic, category string, articleID int) (bool, error)
}

// VideoProducer renders and optionally uploads a short clip for a trend.
type VideoProducer interface {
	Produce(ctx context.Context, topic, category, summary string, keywords []string) (string, error)
}

// Observer receives pipeline events. The metrics collector implements it.
type Observer interface {
	TopicProcessed(outcome models.Outcome)
	ArticleSubmitted()
	TweetPosted()
}

type noopObserver struct{}

func (noopObserver) TopicProcessed(models.Outcome) {}
func (noopObserver) ArticleSubmitted()             {}
func (noopObserver) TweetPosted()                  {}

// Result captures everything a single topic run produced.
type Result struct {
	Outcome       models.Outcome
	WikipediaURL  string
	Category      string
	ArticleID     int
	VideoKeywords []string
	FailureReason string
	TweetPosted   bool
	VideoPath     string
}

// Processor drives a single topic through the pipeline stages.
type Processor struct {
	ledger     *storage.Ledger
	analyzers  *provider.Chain[string, provider.TrendInsight]
	categorize *provider.Chain[provider.CategorizeInput, string]
	summaries  SummaryFetcher
	submitter  Submitter
	announcer  Announcer
	producer   VideoProducer
	observer   Observer
	logger     *slog.Logger
}

// NewProcessor wires the pipeline stages. announcer and producer may be nil
// to disable the optional stages; observer may be nil.
func NewProcessor(
	ledger *storage.Ledger,
	analyzers *provider.Chain[string, provider.TrendInsight],
	categorize *provider.Chain[provider.CategorizeInput, string],
	summaries SummaryFetcher,
	submitter Submitter,
	announcer Announcer,
	producer VideoProducer,
	observer Observer,
	logger *slog.Logger,
) *Processor {
	if observer == nil {
		observer = noopObserver{}
	}
	return &Processor{
		ledger:     ledger,
		analyzers:  analyzers,
		categorize: categorize,
		summaries:  summaries,
		submitter:  submitter,
		announcer:  announcer,
		producer:   producer,
		observer:   observer,
		logger:     logger,
	}
}

// Process runs the stages for one topic. hint carries any insight already
// attached to the session (manual URL or category supplied by the operator).
func (p *Processor) Process(ctx context.Context, topic string, hint models.TrendData) Result {
	res := Result{Outcome: models.OutcomeFailure}

	// Stage 1: resolve a reference URL, category, and video keywords. Total
	// analyzer failure falls back to a URL synthesized from the topic text.
	res.WikipediaURL = hint.URL
	res.Category = hint.Category
	res.VideoKeywords = hint.VideoKeywords
	if res.WikipediaURL == "" {
		insight, err := p.analyzers.Invoke(ctx, topic)
		if err != nil {
			res.WikipediaURL = wikipedia.SynthesizeURL(topic)
			p.logger.Info("analyzer chain exhausted, synthesized url",
				"topic", topic, "url", res.WikipediaURL, "error", err)
		} else {
			res.WikipediaURL = insight.WikipediaURL
			if res.Category == "" {
				res.Category = insight.Category
			}
			if len(res.VideoKeywords) == 0 {
				res.VideoKeywords = insight.VideoKeywords
			}
		}
	}

	// Stage 2: the ledger short-circuits already published references.
	if p.ledger.IsProcessed(res.WikipediaURL) {
		p.logger.Info("skipping already processed url", "topic", topic, "url", res.WikipediaURL)
		res.Outcome = models.OutcomeSkipped
		p.observer.TopicProcessed(res.Outcome)
		return res
	}

	// Stage 3: no summary means there is nothing to publish.
	title := wikipedia.TitleFromURL(res.WikipediaURL)
	summary, err := p.summaries.Summary(ctx, title)
	if err != nil {
		return p.fail(res, topic, fmt.Sprintf("summary fetch failed: %v", err))
	}
	if summary == "" {
		return p.fail(res, topic, "no summary available")
	}

	// Stage 4: content quality filter.
	if reason := wikipedia.FilterSummary(summary); reason != "" {
		return p.fail(res, topic, reason)
	}

	// Stage 5: classify only when resolution left the category open.
	if !models.IsValidCategory(res.Category) {
		res.Category = p.categorize.InvokeDefault(ctx,
			provider.CategorizeInput{Topic: topic, Summary: summary},
			models.DefaultCategory)
	}
	res.Category = models.NormalizeCategory(res.Category)

	// Stage 6: submit. A conflict still counts as published.
	submitted, err := p.submitter.Submit(ctx, res.WikipediaURL, res.Category)
	if err != nil {
		return p.fail(res, topic, fmt.Sprintf("submission failed: %v", err))
	}
	res.ArticleID = submitted.ArticleID
	p.observer.ArticleSubmitted()

	// Stage 7: remember the reference so it is never republished.
	p.ledger.MarkProcessed(res.WikipediaURL)
	res.Outcome = models.OutcomeSuccess

	// Stages 8-10 are best effort and never change the outcome.
	if p.announcer != nil {
		posted, err := p.announcer.Announce(ctx, topic, res.Category, res.ArticleID)
		if err != nil {
			p.logger.Warn("announcement failed", "topic", topic, "error", err)
		}
		res.TweetPosted = posted
		if posted {
			p.observer.TweetPosted()
		}
	}
	if p.producer != nil {
		videoPath, err := p.producer.Produce(ctx, topic, res.Category, summary, res.VideoKeywords)
		if err != nil {
			p.logger.Warn("video production failed", "topic", topic, "error", err)
		} else {
			res.VideoPath = videoPath
		}
	}

	p.observer.TopicProcessed(res.Outcome)
	return res
}

func (p *Processor) fail(res Result, topic, reason string) Result {
	p.logger.Warn("topic failed", "topic", topic, "reason", reason)
	res.Outcome = models.OutcomeFailure
	res.FailureReason = reason
	p.observer.TopicProcessed(res.Outcome)
	return res
}

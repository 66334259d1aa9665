package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/niyoseris/roller/internal/models"
	"github.com/niyoseris/roller/internal/storage"
)

const (
	// DefaultTopicDelay is the pause after a successful topic, matching the
	// rate limits of the summarization service.
	DefaultTopicDelay = 30 * time.Second

	// defaultPollInterval is how often an idle runner checks for work.
	defaultPollInterval = 2 * time.Second
)

// Runner is the single worker draining the session queue. Topics are
// processed strictly one at a time.
type Runner struct {
	store        *storage.SessionStore
	processor    *Processor
	topicDelay   time.Duration
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewRunner creates a runner. A zero topicDelay keeps the default.
func NewRunner(store *storage.SessionStore, processor *Processor, topicDelay time.Duration, logger *slog.Logger) *Runner {
	if topicDelay <= 0 {
		topicDelay = DefaultTopicDelay
	}
	return &Runner{
		store:        store,
		processor:    processor,
		topicDelay:   topicDelay,
		pollInterval: defaultPollInterval,
		logger:       logger,
	}
}

// Run drains the session until the context is cancelled. The session state
// is re-read from disk at the top of every iteration so operator actions
// taken between topics are honored.
func (r *Runner) Run(ctx context.Context) {
	r.logger.Info("orchestrator started", "topic_delay", r.topicDelay)
	for {
		if ctx.Err() != nil {
			r.logger.Info("orchestrator stopped")
			return
		}

		r.store.Reload()
		topic, ok := r.store.NextTrend()
		if !ok {
			if !sleepCtx(ctx, r.pollInterval) {
				r.logger.Info("orchestrator stopped")
				return
			}
			continue
		}

		hint, _ := r.store.TrendData(topic)
		res := r.runTopic(ctx, topic, hint)

		var report *models.Report
		if res.Outcome != models.OutcomeSkipped {
			report = &models.Report{
				Topic:         topic,
				Success:       res.Outcome == models.OutcomeSuccess,
				WikipediaURL:  res.WikipediaURL,
				Category:      res.Category,
				ArticleID:     res.ArticleID,
				VideoKeywords: res.VideoKeywords,
				FailureReason: res.FailureReason,
				TweetPosted:   res.TweetPosted,
				VideoPath:     res.VideoPath,
			}
		}
		r.store.MarkTrendProcessed(topic, res.Outcome, report)

		// Delay only after a success. Failures and skips made no external
		// submission, so the next topic starts immediately.
		if res.Outcome == models.OutcomeSuccess {
			if !sleepCtx(ctx, r.topicDelay) {
				r.logger.Info("orchestrator stopped")
				return
			}
		}
	}
}

// runTopic shields the loop from a panicking stage. A panic becomes a
// failure report for the topic and the loop moves on.
func (r *Runner) runTopic(ctx context.Context, topic string, hint models.TrendData) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("panic while processing topic", "topic", topic, "panic", rec)
			res = Result{
				Outcome:       models.OutcomeFailure,
				FailureReason: fmt.Sprintf("internal error: %v", rec),
			}
		}
	}()
	return r.processor.Process(ctx, topic, hint)
}

// sleepCtx waits for d or until the context ends. It reports false when the
// context ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

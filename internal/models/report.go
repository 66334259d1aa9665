package models

import "time"

// Outcome classifies what happened to a dequeued topic.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	// OutcomeSkipped marks a ledger duplicate: the cursor advances but the
	// topic counts toward neither success nor failure and leaves no report.
	OutcomeSkipped Outcome = "skipped"
)

// Report is the immutable-after-write record of one processed topic. A later
// reprocessing of the same topic name overwrites it; no history is kept.
type Report struct {
	ID            string    `json:"id"`
	Topic         string    `json:"topic"`
	Success       bool      `json:"success"`
	WikipediaURL  string    `json:"wikipedia_url,omitempty"`
	Category      string    `json:"category,omitempty"`
	ArticleID     int       `json:"article_id,omitempty"`
	VideoKeywords []string  `json:"video_keywords,omitempty"`
	FailureReason string    `json:"failure_reason,omitempty"`
	TweetPosted   bool      `json:"tweet_posted,omitempty"`
	VideoPath     string    `json:"video_path,omitempty"`
	ProcessedAt   time.Time `json:"processed_at"`
}

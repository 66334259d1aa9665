package api

import (
	"context"
	"net/http"
	"time"

	"github.com/niyoseris/roller/internal/collector"
	"github.com/niyoseris/roller/internal/models"
	"github.com/niyoseris/roller/internal/storage"
	"log/slog"
)

const collectTimeout = 30 * time.Second

// TrendHandler runs the trend collectors on demand and reports pipeline
// statistics.
type TrendHandler struct {
	collectors *collector.Set
	store      *storage.SessionStore
	ledger     *storage.Ledger
	startTime  time.Time
	logger     *slog.Logger
}

// NewTrendHandler creates a new trend handler.
func NewTrendHandler(collectors *collector.Set, store *storage.SessionStore, ledger *storage.Ledger, logger *slog.Logger) *TrendHandler {
	return &TrendHandler{
		collectors: collectors,
		store:      store,
		ledger:     ledger,
		startTime:  time.Now(),
		logger:     logger,
	}
}

// CollectResponse lists the topics the collectors found.
type CollectResponse struct {
	Trends []string `json:"trends"`
	Count  int      `json:"count"`
}

// Collect handles GET /api/trends/collect. It queries the feeds without
// touching the session; the operator decides what to enqueue.
func (h *TrendHandler) Collect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), collectTimeout)
	defer cancel()

	trends := h.collectors.CollectAll(ctx)
	writeJSON(w, http.StatusOK, CollectResponse{Trends: trends, Count: len(trends)})
}

// StatsResponse summarizes the pipeline for the dashboard.
type StatsResponse struct {
	UptimeSeconds int                  `json:"uptime_seconds"`
	Session       models.SessionStatus `json:"session"`
	ReportCount   int                  `json:"report_count"`
	SuccessCount  int                  `json:"success_count"`
	FailureCount  int                  `json:"failure_count"`
	LedgerSize    int                  `json:"ledger_size"`
	TweetsPosted  int                  `json:"tweets_posted"`
	VideosCreated int                  `json:"videos_created"`
}

// Stats handles GET /api/stats.
func (h *TrendHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	reports := h.store.Reports()
	stats := StatsResponse{
		UptimeSeconds: int(time.Since(h.startTime).Seconds()),
		Session:       h.store.Status(),
		ReportCount:   len(reports),
		LedgerSize:    h.ledger.Count(),
	}
	for _, report := range reports {
		if report.Success {
			stats.SuccessCount++
		} else {
			stats.FailureCount++
		}
		if report.TweetPosted {
			stats.TweetsPosted++
		}
		if report.VideoPath != "" {
			stats.VideosCreated++
		}
	}

	writeJSON(w, http.StatusOK, stats)
}

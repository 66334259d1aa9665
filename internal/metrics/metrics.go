package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/niyoseris/roller/internal/models"
)

// Collector exposes Prometheus metrics for inbound HTTP requests and the
// trend pipeline, sharing one registry.
type Collector struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	topicsProcessed   *prometheus.CounterVec
	fallbacksTotal    *prometheus.CounterVec
	quotaWaits        *prometheus.CounterVec
	articlesSubmitted prometheus.Counter
	tweetsPosted      prometheus.Counter
	storageFailures   prometheus.Counter
}

// NewCollector constructs a collector with default histograms/counters.
func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "roller",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution for inbound HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roller",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of inbound HTTP requests.",
	}, []string{"method", "path", "status"})

	topicsProcessed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roller",
		Subsystem: "pipeline",
		Name:      "topics_processed_total",
		Help:      "Topics processed, partitioned by outcome.",
	}, []string{"outcome"})

	fallbacksTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roller",
		Subsystem: "pipeline",
		Name:      "provider_fallbacks_total",
		Help:      "Provider chain fallbacks, partitioned by capability.",
	}, []string{"capability"})

	quotaWaits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roller",
		Subsystem: "pipeline",
		Name:      "quota_waits_total",
		Help:      "Quota backoff waits, partitioned by capability.",
	}, []string{"capability"})

	articlesSubmitted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "roller",
		Subsystem: "pipeline",
		Name:      "articles_submitted_total",
		Help:      "Articles accepted by the summarization service.",
	})

	tweetsPosted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "roller",
		Subsystem: "pipeline",
		Name:      "tweets_posted_total",
		Help:      "Announcement tweets published.",
	})

	storageFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "roller",
		Subsystem: "storage",
		Name:      "write_failures_total",
		Help:      "Failed writes of the session, report, or ledger documents.",
	})

	for _, c := range []prometheus.Collector{
		requestDuration, requestTotal,
		topicsProcessed, fallbacksTotal, quotaWaits,
		articlesSubmitted, tweetsPosted, storageFailures,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return &Collector{
		registry:          registry,
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		topicsProcessed:   topicsProcessed,
		fallbacksTotal:    fallbacksTotal,
		quotaWaits:        quotaWaits,
		articlesSubmitted: articlesSubmitted,
		tweetsPosted:      tweetsPosted,
		storageFailures:   storageFailures,
	}, nil
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler to record HTTP metrics.
func (c *Collector) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.status)
		path := r.URL.Path

		c.requestTotal.WithLabelValues(r.Method, path, status).Inc()
		c.requestDuration.WithLabelValues(r.Method, path, status).Observe(duration)
	})
}

// TopicProcessed records a finished topic.
func (c *Collector) TopicProcessed(outcome models.Outcome) {
	c.topicsProcessed.WithLabelValues(string(outcome)).Inc()
}

// ArticleSubmitted records an accepted submission.
func (c *Collector) ArticleSubmitted() {
	c.articlesSubmitted.Inc()
}

// TweetPosted records a published announcement.
func (c *Collector) TweetPosted() {
	c.tweetsPosted.Inc()
}

// FallbackAdvanced records a provider chain advancing past a failed provider.
func (c *Collector) FallbackAdvanced(capability, _ string) {
	c.fallbacksTotal.WithLabelValues(capability).Inc()
}

// QuotaWait records a quota backoff sleep.
func (c *Collector) QuotaWait(capability string, _ time.Duration) {
	c.quotaWaits.WithLabelValues(capability).Inc()
}

// StorageWriteFailures returns the counter the stores increment when a
// document write fails.
func (c *Collector) StorageWriteFailures() prometheus.Counter {
	return c.storageFailures
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

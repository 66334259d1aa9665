package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Ledger is the durable set of reference URLs that were already submitted.
// Entries are only ever removed by an explicit operator Clear. The file is
// rewritten wholesale on every insertion; a failed write is logged and the
// in-memory set stays authoritative for the rest of the process lifetime.
type Ledger struct {
	path          string
	logger        *slog.Logger
	writeFailures prometheus.Counter

	mu   sync.RWMutex
	urls map[string]struct{}
}

type ledgerDocument struct {
	URLs []string `json:"urls"`
}

// NewLedger loads the ledger from path, starting empty when the file does
// not exist. A corrupt file is treated the same as a missing one.
func NewLedger(path string, logger *slog.Logger) *Ledger {
	l := &Ledger{
		path:   path,
		logger: logger,
		urls:   map[string]struct{}{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Error("failed to read ledger file", "path", path, "error", err)
		}
		return l
	}

	var doc ledgerDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Error("failed to parse ledger file, starting empty", "path", path, "error", err)
		return l
	}

	for _, u := range doc.URLs {
		l.urls[u] = struct{}{}
	}
	logger.Info("loaded processed URL ledger", "path", path, "count", len(l.urls))
	return l
}

// SetWriteFailureCounter wires a metric incremented when persisting fails.
func (l *Ledger) SetWriteFailureCounter(c prometheus.Counter) {
	l.writeFailures = c
}

// IsProcessed reports whether url was already submitted.
func (l *Ledger) IsProcessed(url string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.urls[url]
	return ok
}

// MarkProcessed inserts url and persists the ledger immediately.
func (l *Ledger) MarkProcessed(url string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.urls[url] = struct{}{}
	l.persistLocked()
	l.logger.Info("marked URL as processed", "url", url)
}

// Clear empties the ledger and persists. This is the only way a topic can be
// reprocessed after a successful submission.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.urls = map[string]struct{}{}
	l.persistLocked()
	l.logger.Warn("cleared processed URL ledger")
}

// Count returns the number of ledger entries.
func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.urls)
}

func (l *Ledger) persistLocked() {
	doc := ledgerDocument{URLs: make([]string, 0, len(l.urls))}
	for u := range l.urls {
		doc.URLs = append(doc.URLs, u)
	}

	if err := writeJSONFile(l.path, doc); err != nil {
		l.logger.Error("failed to persist ledger", "path", l.path, "error", err)
		if l.writeFailures != nil {
			l.writeFailures.Inc()
		}
	}
}

// writeJSONFile rewrites path wholesale via a temp file in the same
// directory, so readers never observe a torn document.
func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

package storage

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/niyoseris/roller/internal/models"
)

// SessionStore owns the durable session document and the per-topic report
// document. Both are rewritten wholesale on every mutation. The store is the
// single surface through which the orchestrator and the operator API touch
// session state; there are no ambient globals.
type SessionStore struct {
	sessionPath   string
	reportsPath   string
	logger        *slog.Logger
	writeFailures prometheus.Counter

	mu      sync.RWMutex
	session *models.Session
	reports map[string]models.Report
}

// NewSessionStore loads session and report documents from disk, starting
// from an empty idle session when either file is missing or unreadable.
func NewSessionStore(sessionPath, reportsPath string, logger *slog.Logger) *SessionStore {
	s := &SessionStore{
		sessionPath: sessionPath,
		reportsPath: reportsPath,
		logger:      logger,
		session:     models.NewSession(),
		reports:     map[string]models.Report{},
	}
	s.loadSession()
	s.loadReports()
	return s
}

// SetWriteFailureCounter wires a metric incremented when persisting fails.
func (s *SessionStore) SetWriteFailureCounter(c prometheus.Counter) {
	s.writeFailures = c
}

func (s *SessionStore) loadSession() {
	data, err := os.ReadFile(s.sessionPath)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Error("failed to read session file", "path", s.sessionPath, "error", err)
		}
		return
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		s.logger.Error("failed to parse session file, starting idle", "path", s.sessionPath, "error", err)
		return
	}
	if sess.TrendData == nil {
		sess.TrendData = map[string]models.TrendData{}
	}
	s.session = &sess
}

func (s *SessionStore) loadReports() {
	data, err := os.ReadFile(s.reportsPath)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Error("failed to read reports file", "path", s.reportsPath, "error", err)
		}
		return
	}

	reports := map[string]models.Report{}
	if err := json.Unmarshal(data, &reports); err != nil {
		s.logger.Error("failed to parse reports file, starting empty", "path", s.reportsPath, "error", err)
		return
	}
	s.reports = reports
}

// Reload re-reads both documents from disk. The orchestrator calls this at
// the top of every loop iteration so topics appended or status flips made
// through the operator API are observed without restart.
func (s *SessionStore) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadSession()
	s.loadReports()
}

// StartNewSession replaces the session wholesale with the given topics.
// autoStart selects running over paused. Returns false for an empty list.
func (s *SessionStore) StartNewSession(topics []string, trendData map[string]models.TrendData, autoStart bool) bool {
	if len(topics) == 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	state := models.StatePaused
	if autoStart {
		state = models.StateRunning
	}
	if trendData == nil {
		trendData = map[string]models.TrendData{}
	}

	s.session = &models.Session{
		Topics:    append([]string{}, topics...),
		TrendData: trendData,
		Processed: []string{},
		Failed:    []string{},
		State:     state,
		CreatedAt: &now,
		UpdatedAt: &now,
		Total:     len(topics),
	}
	s.persistSessionLocked()
	s.logger.Info("started new session", "topics", len(topics), "state", state)
	return true
}

// AddTrends tail-appends topics not already present in the session. The
// cursor is never touched, so this is safe while the loop is running.
func (s *SessionStore) AddTrends(topics []string) bool {
	if len(topics) == 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]struct{}, len(s.session.Topics))
	for _, t := range s.session.Topics {
		existing[t] = struct{}{}
	}
	added := 0
	for _, t := range topics {
		if _, ok := existing[t]; ok {
			continue
		}
		s.session.Topics = append(s.session.Topics, t)
		existing[t] = struct{}{}
		added++
	}
	s.session.Total = len(s.session.Topics)
	s.persistSessionLocked()
	s.logger.Info("appended topics to session", "added", added, "total", s.session.Total)
	return true
}

// NextTrend returns the topic under the cursor without advancing it, so the
// call is an idempotent peek. It returns "", false when the session is not
// running, and flips the session to completed when the cursor has reached
// the end of the list.
func (s *SessionStore) NextTrend() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.State != models.StateRunning {
		return "", false
	}
	if s.session.Cursor >= len(s.session.Topics) {
		s.session.State = models.StateCompleted
		s.persistSessionLocked()
		s.logger.Info("session completed", "processed", s.session.Cursor)
		return "", false
	}
	return s.session.Topics[s.session.Cursor], true
}

// TrendData returns the resolved side-channel data for a topic, if any.
func (s *SessionStore) TrendData(topic string) (models.TrendData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.session.TrendData[topic]
	return d, ok
}

// SetTrendData records resolved data for a topic and persists.
func (s *SessionStore) SetTrendData(topic string, data models.TrendData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.TrendData[topic] = data
	s.persistSessionLocked()
}

// MarkTrendProcessed advances the cursor by exactly one and files the topic
// according to its outcome. Success and failure each bump their counter and
// overwrite the topic's report; a skip advances the cursor only, leaving the
// counters and report store untouched. Both documents persist as one
// mutation. This must be called exactly once per dequeued topic.
func (s *SessionStore) MarkTrendProcessed(topic string, outcome models.Outcome, report *models.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.Cursor++

	switch outcome {
	case models.OutcomeSuccess:
		s.session.Processed = append(s.session.Processed, topic)
		s.session.Successful++
	case models.OutcomeFailure:
		s.session.Failed = append(s.session.Failed, topic)
		s.session.FailedN++
	case models.OutcomeSkipped:
		s.session.Processed = append(s.session.Processed, topic)
	}

	if report != nil && outcome != models.OutcomeSkipped {
		r := *report
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		r.Topic = topic
		r.Success = outcome == models.OutcomeSuccess
		if r.ProcessedAt.IsZero() {
			r.ProcessedAt = time.Now()
		}
		s.reports[topic] = r
		s.persistReportsLocked()
	}

	s.persistSessionLocked()
}

// Pause moves a running session to paused. The in-flight topic, if any,
// runs to completion; only the next dequeue observes the pause.
func (s *SessionStore) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.State = models.StatePaused
	s.persistSessionLocked()
	s.logger.Info("session paused")
}

// Resume moves a paused session back to running.
func (s *SessionStore) Resume() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.State != models.StatePaused {
		return false
	}
	s.session.State = models.StateRunning
	s.persistSessionLocked()
	s.logger.Info("session resumed")
	return true
}

// Reset replaces the session with an empty idle one and clears all reports.
func (s *SessionStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = models.NewSession()
	s.reports = map[string]models.Report{}
	s.persistSessionLocked()
	s.persistReportsLocked()
	s.logger.Info("session reset")
}

// State returns the current session state.
func (s *SessionStore) State() models.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.State
}

// Status returns the operator-facing projection of the session.
func (s *SessionStore) Status() models.SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Status()
}

// Snapshot returns a deep copy of the session for read-only serving.
func (s *SessionStore) Snapshot() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := *s.session
	snap.Topics = append([]string{}, s.session.Topics...)
	snap.Processed = append([]string{}, s.session.Processed...)
	snap.Failed = append([]string{}, s.session.Failed...)
	snap.TrendData = make(map[string]models.TrendData, len(s.session.TrendData))
	for k, v := range s.session.TrendData {
		snap.TrendData[k] = v
	}
	return snap
}

// Reports returns a copy of all reports keyed by topic.
func (s *SessionStore) Reports() map[string]models.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]models.Report, len(s.reports))
	for k, v := range s.reports {
		out[k] = v
	}
	return out
}

// Report returns the report for one topic.
func (s *SessionStore) Report(topic string) (models.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[topic]
	return r, ok
}

// ClearReports empties the report store and persists.
func (s *SessionStore) ClearReports() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = map[string]models.Report{}
	s.persistReportsLocked()
	s.logger.Info("cleared reports")
}

func (s *SessionStore) persistSessionLocked() {
	now := time.Now()
	s.session.UpdatedAt = &now
	if err := writeJSONFile(s.sessionPath, s.session); err != nil {
		s.logger.Error("failed to persist session", "path", s.sessionPath, "error", err)
		if s.writeFailures != nil {
			s.writeFailures.Inc()
		}
	}
}

func (s *SessionStore) persistReportsLocked() {
	if err := writeJSONFile(s.reportsPath, s.reports); err != nil {
		s.logger.Error("failed to persist reports", "path", s.reportsPath, "error", err)
		if s.writeFailures != nil {
			s.writeFailures.Inc()
		}
	}
}

package api

import (
	"encoding/json"
	"net/http"

	"github.com/niyoseris/roller/internal/models"
	"github.com/niyoseris/roller/internal/storage"
	"log/slog"
)

// SessionHandler exposes the session state store to the dashboard.
type SessionHandler struct {
	store  *storage.SessionStore
	logger *slog.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(store *storage.SessionStore, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{store: store, logger: logger}
}

// StartSessionRequest carries the topics for a new manual session.
type StartSessionRequest struct {
	Trends    []string                    `json:"trends"`
	TrendData map[string]models.TrendData `json:"trend_data,omitempty"`
	AutoStart bool                        `json:"auto_start"`
}

// AddTrendsRequest appends topics to the current session.
type AddTrendsRequest struct {
	Trends []string `json:"trends"`
}

// StartSession handles POST /api/session/trends. It replaces any previous
// session wholesale.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !h.store.StartNewSession(req.Trends, req.TrendData, req.AutoStart) {
		http.Error(w, "At least one trend is required", http.StatusBadRequest)
		return
	}

	h.logger.Info("session started",
		"trends", len(req.Trends),
		"auto_start", req.AutoStart)
	writeJSON(w, http.StatusOK, h.store.Status())
}

// AddTrends handles POST /api/session/trends/add.
func (h *SessionHandler) AddTrends(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req AddTrendsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !h.store.AddTrends(req.Trends) {
		http.Error(w, "No new trends to add", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, h.store.Status())
}

// Start handles POST /api/session/start. It resumes a paused session.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.store.Resume() {
		http.Error(w, "No paused session to start", http.StatusConflict)
		return
	}

	h.logger.Info("session resumed")
	writeJSON(w, http.StatusOK, h.store.Status())
}

// Pause handles POST /api/session/pause. The topic in flight finishes; the
// next dequeue stops.
func (h *SessionHandler) Pause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.store.Pause()
	h.logger.Info("session paused")
	writeJSON(w, http.StatusOK, h.store.Status())
}

// Reset handles POST /api/session/reset.
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.store.Reset()
	h.logger.Info("session reset")
	writeJSON(w, http.StatusOK, h.store.Status())
}

// Status handles GET /api/session/status.
func (h *SessionHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, h.store.Status())
}

package api

import (
	"net/http"
	"strings"

	"github.com/niyoseris/roller/internal/storage"
	"log/slog"
)

// ReportHandler serves per-topic processing reports and the URL ledger.
type ReportHandler struct {
	store  *storage.SessionStore
	ledger *storage.Ledger
	logger *slog.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(store *storage.SessionStore, ledger *storage.Ledger, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{store: store, ledger: ledger, logger: logger}
}

// Reports handles GET /api/reports and GET /api/reports/{topic}.
func (h *ReportHandler) Reports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	topic := strings.TrimPrefix(r.URL.Path, "/api/reports")
	topic = strings.TrimPrefix(topic, "/")
	if topic == "" {
		writeJSON(w, http.StatusOK, h.store.Reports())
		return
	}

	report, ok := h.store.Report(topic)
	if !ok {
		http.Error(w, "No report for topic", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ClearReports handles POST /api/reports/clear.
func (h *ReportHandler) ClearReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.store.ClearReports()
	h.logger.Info("reports cleared")
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// ClearLedger handles POST /api/ledger/clear. Cleared URLs become eligible
// for reprocessing.
func (h *ReportHandler) ClearLedger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.ledger.Clear()
	h.logger.Info("url ledger cleared")
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

package api

import (
	"encoding/json"
	"net/http"

	"github.com/niyoseris/roller/internal/auth"
	"github.com/niyoseris/roller/internal/collector"
	"github.com/niyoseris/roller/internal/storage"
	"log/slog"
)

// SetupRoutes configures all API routes
func SetupRoutes(mux *http.ServeMux, store *storage.SessionStore, ledger *storage.Ledger, collectors *collector.Set, authConfig auth.Config, logger *slog.Logger) {
	sessionHandler := NewSessionHandler(store, logger)
	reportHandler := NewReportHandler(store, ledger, logger)
	trendHandler := NewTrendHandler(collectors, store, ledger, logger)
	authHandler := NewAuthHandler(authConfig, logger)

	authMiddleware := auth.Middleware(authConfig)
	protected := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(h)
	}

	// Authentication routes (public)
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.Handle("/api/auth/validate", protected(authHandler.ValidateToken))

	// Session lifecycle
	mux.Handle("/api/session/trends", protected(sessionHandler.StartSession))
	mux.Handle("/api/session/trends/add", protected(sessionHandler.AddTrends))
	mux.Handle("/api/session/start", protected(sessionHandler.Start))
	mux.Handle("/api/session/pause", protected(sessionHandler.Pause))
	mux.Handle("/api/session/reset", protected(sessionHandler.Reset))
	mux.Handle("/api/session/status", protected(sessionHandler.Status))

	// Reports and ledger
	mux.Handle("/api/reports", protected(reportHandler.Reports))
	mux.Handle("/api/reports/", protected(reportHandler.Reports))
	mux.Handle("/api/reports/clear", protected(reportHandler.ClearReports))
	mux.Handle("/api/ledger/clear", protected(reportHandler.ClearLedger))

	// Trend collection and statistics
	mux.Handle("/api/trends/collect", protected(trendHandler.Collect))
	mux.Handle("/api/stats", protected(trendHandler.Stats))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

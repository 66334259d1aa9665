package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/niyoseris/roller/internal/api"
	"github.com/niyoseris/roller/internal/auth"
	"github.com/niyoseris/roller/internal/collector"
	"github.com/niyoseris/roller/internal/config"
	"github.com/niyoseris/roller/internal/logging"
	"github.com/niyoseris/roller/internal/media"
	"github.com/niyoseris/roller/internal/metrics"
	"github.com/niyoseris/roller/internal/orchestrator"
	"github.com/niyoseris/roller/internal/provider"
	"github.com/niyoseris/roller/internal/publisher"
	"github.com/niyoseris/roller/internal/scheduler"
	"github.com/niyoseris/roller/internal/server"
	"github.com/niyoseris/roller/internal/social"
	"github.com/niyoseris/roller/internal/storage"
	"github.com/niyoseris/roller/internal/wikipedia"
	"log/slog"
)

func main() {
	// Local development convenience; absence of the file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	logger.Info("starting roller")

	collectorMetrics, err := metrics.NewCollector()
	if err != nil {
		logger.Error("failed to init metrics", "error", err)
		os.Exit(1)
	}

	// Durable JSON documents.
	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		logger.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}
	store := storage.NewSessionStore(
		filepath.Join(cfg.Storage.DataDir, cfg.Storage.SessionFile),
		filepath.Join(cfg.Storage.DataDir, cfg.Storage.ReportsFile),
		logger,
	)
	store.SetWriteFailureCounter(collectorMetrics.StorageWriteFailures())
	ledger := storage.NewLedger(filepath.Join(cfg.Storage.DataDir, cfg.Storage.LedgerFile), logger)
	ledger.SetWriteFailureCounter(collectorMetrics.StorageWriteFailures())

	// Provider chains. OpenAI first where configured; the keyword scorer is
	// the always-available categorization fallback.
	openaiConfig := provider.DefaultOpenAIConfig()
	openaiConfig.APIKey = cfg.OpenAI.APIKey
	if cfg.OpenAI.Model != "" {
		openaiConfig.Model = cfg.OpenAI.Model
	}
	if cfg.OpenAI.TTSVoice != "" {
		openaiConfig.TTSVoice = cfg.OpenAI.TTSVoice
	}
	openaiProvider := provider.NewOpenAIProvider(openaiConfig, logger)

	analyzerChain := provider.NewChain("trend-analysis", logger,
		openaiProvider.TrendAnalyzer(),
	).Observe(collectorMetrics)
	categorizerChain := provider.NewChain[provider.CategorizeInput, string]("categorization", logger,
		openaiProvider.Categorizer(),
		provider.NewKeywordCategorizer(),
	).Observe(collectorMetrics)
	keywordChain := provider.NewChain("video-keywords", logger,
		openaiProvider.KeywordSuggester(),
	).Observe(collectorMetrics)
	speechChain := provider.NewChain("speech", logger,
		openaiProvider.SpeechSynthesizer(),
	).Observe(collectorMetrics)

	wikiClient := wikipedia.NewClient(logger)
	submitter := publisher.NewClient(cfg.Publisher.Endpoint, cfg.Publisher.Secret, logger)

	// Optional announcement stage.
	var announcer orchestrator.Announcer
	if cfg.Twitter.Enabled {
		creds := social.Credentials{
			APIKey:            cfg.Twitter.APIKey,
			APISecret:         cfg.Twitter.APISecret,
			AccessToken:       cfg.Twitter.AccessToken,
			AccessTokenSecret: cfg.Twitter.AccessTokenSecret,
			BearerToken:       cfg.Twitter.BearerToken,
		}
		if !creds.Configured() {
			logger.Warn("twitter enabled but credentials incomplete, announcements disabled")
		} else {
			twitterClient := social.NewTwitterClient(creds, logger)
			if creds.BearerToken != "" {
				checkCtx, checkCancel := context.WithTimeout(context.Background(), 10*time.Second)
				if err := twitterClient.ValidateCredentials(checkCtx); err != nil {
					logger.Warn("twitter credential check failed", "error", err)
				}
				checkCancel()
			}
			announcer = social.NewAnnouncer(twitterClient, true, logger)
			logger.Info("twitter announcements enabled")
		}
	}

	// Optional render and upload stages.
	var producer orchestrator.VideoProducer
	if cfg.Video.Enabled {
		footage := media.NewFootageClient(cfg.Video.PexelsAPIKey, logger)
		if !footage.Configured() {
			logger.Warn("video enabled but PEXELS_API_KEY missing, video stage disabled")
		} else {
			narrator := media.NewNarrator(speechChain, cfg.OpenAI.TTSVoice, cfg.Video.OutputDir, logger)
			renderer := media.NewFFmpegRenderer(cfg.Video.FFmpegBinary, cfg.Video.OutputDir, logger)
			var uploader media.Uploader
			if cfg.Video.UploadEnabled && cfg.Video.YouTubeToken != "" {
				uploader = media.NewYouTubeUploader(cfg.Video.YouTubeToken, cfg.Video.VideoPrivacy, logger)
				logger.Info("youtube uploads enabled", "privacy", cfg.Video.VideoPrivacy)
			}
			producer = media.NewProducer(narrator, keywordChain, footage, renderer, uploader, cfg.Video.OutputDir, logger)
			logger.Info("video production enabled", "output_dir", cfg.Video.OutputDir)
		}
	}

	processor := orchestrator.NewProcessor(
		ledger,
		analyzerChain,
		categorizerChain,
		wikiClient,
		submitter,
		announcer,
		producer,
		collectorMetrics,
		logger,
	)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	runner := orchestrator.NewRunner(store, processor, cfg.Pipeline.TopicDelay, logger)
	go runner.Run(rootCtx)

	collectors := collector.NewSet(logger, cfg.Collector.MaxPerSource, collector.DefaultCollectors(logger)...)

	if cfg.Collector.CycleEnabled {
		cycle := scheduler.NewCycleScheduler(collectors, store, cfg.Collector.CycleInterval, logger)
		go cycle.Start(rootCtx)
		logger.Info("collection cycle enabled", "interval", cfg.Collector.CycleInterval)
	}

	// HTTP surface.
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", collectorMetrics.Handler())

	authConfig := auth.Config{
		JWTSecret:         cfg.Auth.JWTSecret,
		AdminUsername:     cfg.Auth.AdminUsername,
		AdminPasswordHash: cfg.Auth.AdminPasswordHash,
		TokenTTL:          cfg.Auth.TokenTTL,
	}
	if !authConfig.Enabled() {
		logger.Warn("JWT_SECRET not set, dashboard API is unauthenticated")
	}

	api.SetupRoutes(mux, store, ledger, collectors, authConfig, logger)

	handler := server.DashboardMiddleware(collectorMetrics.InstrumentHandler(mux), "./web/dist", "./web/dist/index.html")

	srv := server.New(cfg.Server, logger, handler)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("roller started", "url", fmt.Sprintf("http://localhost:%s", cfg.Server.Port))

	waitForSignal(logger)

	logger.Info("shutting down")
	rootCancel()
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}

func waitForSignal(logger *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	sig := <-c
	logger.Info("received signal", "signal", sig.String())
	signal.Stop(c)
	close(c)
}

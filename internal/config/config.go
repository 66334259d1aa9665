package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents runtime configuration. Defaults are overridden by an
// optional YAML file named in ROLLER_CONFIG, and environment variables win
// over both.
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	Auth      AuthConfig
	Storage   StorageConfig
	Pipeline  PipelineConfig
	Publisher PublisherConfig
	OpenAI    OpenAIConfig
	Twitter   TwitterConfig
	Video     VideoConfig
	Collector CollectorConfig
}

// ServerConfig holds HTTP server runtime parameters.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LoggingConfig represents structured logging configuration.
type LoggingConfig struct {
	Level  slog.Level
	Format string
}

// AuthConfig holds dashboard login settings.
type AuthConfig struct {
	JWTSecret         string
	AdminUsername     string
	AdminPasswordHash string
	TokenTTL          time.Duration
}

// StorageConfig names the durable JSON documents.
type StorageConfig struct {
	DataDir     string
	SessionFile string
	ReportsFile string
	LedgerFile  string
}

// PipelineConfig controls the orchestrator.
type PipelineConfig struct {
	TopicDelay time.Duration
}

// PublisherConfig points at the summarization service.
type PublisherConfig struct {
	Endpoint string
	Secret   string
}

// OpenAIConfig holds the analysis and narration provider settings.
type OpenAIConfig struct {
	APIKey   string
	Model    string
	TTSVoice string
}

// TwitterConfig holds announcement posting credentials.
type TwitterConfig struct {
	Enabled           bool
	APIKey            string
	APISecret         string
	AccessToken       string
	AccessTokenSecret string
	BearerToken       string
}

// VideoConfig controls the optional render and upload stages.
type VideoConfig struct {
	Enabled       bool
	PexelsAPIKey  string
	FFmpegBinary  string
	OutputDir     string
	YouTubeToken  string
	VideoPrivacy  string
	UploadEnabled bool
}

// CollectorConfig controls the trend collectors and the periodic cycle.
type CollectorConfig struct {
	MaxPerSource  int
	CycleEnabled  bool
	CycleInterval time.Duration
}

const (
	defaultPort            = "8080"
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultShutdownTimeout = 5 * time.Second

	defaultLogFormat = "json"

	defaultTokenTTL      = 24 * time.Hour
	defaultDataDir       = "data"
	defaultSessionFile   = "scan_session.json"
	defaultReportsFile   = "scan_reports.json"
	defaultLedgerFile    = "processed_urls.json"
	defaultTopicDelay    = 30 * time.Second
	defaultEndpoint      = "https://roll.wiki/api/v1/summarize"
	defaultTTSVoice      = "alloy"
	defaultVideoDir      = "videos"
	defaultVideoPrivacy  = "unlisted"
	defaultMaxPerSource  = 10
	defaultCycleInterval = time.Hour
)

// Load builds the configuration from defaults, the optional config file, and
// the environment, in that order.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("ROLLER_CONFIG"); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            defaultPort,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Logging: LoggingConfig{
			Level:  slog.LevelInfo,
			Format: defaultLogFormat,
		},
		Auth: AuthConfig{
			TokenTTL: defaultTokenTTL,
		},
		Storage: StorageConfig{
			DataDir:     defaultDataDir,
			SessionFile: defaultSessionFile,
			ReportsFile: defaultReportsFile,
			LedgerFile:  defaultLedgerFile,
		},
		Pipeline: PipelineConfig{
			TopicDelay: defaultTopicDelay,
		},
		Publisher: PublisherConfig{
			Endpoint: defaultEndpoint,
		},
		OpenAI: OpenAIConfig{
			TTSVoice: defaultTTSVoice,
		},
		Video: VideoConfig{
			OutputDir:    defaultVideoDir,
			VideoPrivacy: defaultVideoPrivacy,
		},
		Collector: CollectorConfig{
			MaxPerSource:  defaultMaxPerSource,
			CycleInterval: defaultCycleInterval,
		},
	}
}

// fileConfig mirrors Config with optional fields so the YAML overlay only
// touches keys the file actually sets.
type fileConfig struct {
	Server struct {
		Port                   *string `yaml:"port"`
		ReadTimeoutSeconds     *int    `yaml:"read_timeout_seconds"`
		WriteTimeoutSeconds    *int    `yaml:"write_timeout_seconds"`
		ShutdownTimeoutSeconds *int    `yaml:"shutdown_timeout_seconds"`
	} `yaml:"server"`
	Logging struct {
		Level  *string `yaml:"level"`
		Format *string `yaml:"format"`
	} `yaml:"logging"`
	Storage struct {
		DataDir *string `yaml:"data_dir"`
	} `yaml:"storage"`
	Pipeline struct {
		TopicDelaySeconds *int `yaml:"topic_delay_seconds"`
	} `yaml:"pipeline"`
	Publisher struct {
		Endpoint *string `yaml:"endpoint"`
	} `yaml:"publisher"`
	Video struct {
		Enabled       *bool   `yaml:"enabled"`
		FFmpegBinary  *string `yaml:"ffmpeg_binary"`
		OutputDir     *string `yaml:"output_dir"`
		Privacy       *string `yaml:"privacy"`
		UploadEnabled *bool   `yaml:"upload_enabled"`
	} `yaml:"video"`
	Collector struct {
		MaxPerSource         *int  `yaml:"max_per_source"`
		CycleEnabled         *bool `yaml:"cycle_enabled"`
		CycleIntervalMinutes *int  `yaml:"cycle_interval_minutes"`
	} `yaml:"collector"`
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.Server.Port != nil {
		cfg.Server.Port = *fc.Server.Port
	}
	if fc.Server.ReadTimeoutSeconds != nil {
		cfg.Server.ReadTimeout = time.Duration(*fc.Server.ReadTimeoutSeconds) * time.Second
	}
	if fc.Server.WriteTimeoutSeconds != nil {
		cfg.Server.WriteTimeout = time.Duration(*fc.Server.WriteTimeoutSeconds) * time.Second
	}
	if fc.Server.ShutdownTimeoutSeconds != nil {
		cfg.Server.ShutdownTimeout = time.Duration(*fc.Server.ShutdownTimeoutSeconds) * time.Second
	}
	if fc.Logging.Level != nil {
		level, err := parseLogLevel(*fc.Logging.Level)
		if err != nil {
			return fmt.Errorf("invalid logging.level: %w", err)
		}
		cfg.Logging.Level = level
	}
	if fc.Logging.Format != nil {
		if *fc.Logging.Format != "json" && *fc.Logging.Format != "text" {
			return fmt.Errorf("invalid logging.format: must be 'json' or 'text'")
		}
		cfg.Logging.Format = *fc.Logging.Format
	}
	if fc.Storage.DataDir != nil {
		cfg.Storage.DataDir = *fc.Storage.DataDir
	}
	if fc.Pipeline.TopicDelaySeconds != nil {
		cfg.Pipeline.TopicDelay = time.Duration(*fc.Pipeline.TopicDelaySeconds) * time.Second
	}
	if fc.Publisher.Endpoint != nil {
		cfg.Publisher.Endpoint = *fc.Publisher.Endpoint
	}
	if fc.Video.Enabled != nil {
		cfg.Video.Enabled = *fc.Video.Enabled
	}
	if fc.Video.FFmpegBinary != nil {
		cfg.Video.FFmpegBinary = *fc.Video.FFmpegBinary
	}
	if fc.Video.OutputDir != nil {
		cfg.Video.OutputDir = *fc.Video.OutputDir
	}
	if fc.Video.Privacy != nil {
		cfg.Video.VideoPrivacy = *fc.Video.Privacy
	}
	if fc.Video.UploadEnabled != nil {
		cfg.Video.UploadEnabled = *fc.Video.UploadEnabled
	}
	if fc.Collector.MaxPerSource != nil {
		cfg.Collector.MaxPerSource = *fc.Collector.MaxPerSource
	}
	if fc.Collector.CycleEnabled != nil {
		cfg.Collector.CycleEnabled = *fc.Collector.CycleEnabled
	}
	if fc.Collector.CycleIntervalMinutes != nil {
		cfg.Collector.CycleInterval = time.Duration(*fc.Collector.CycleIntervalMinutes) * time.Minute
	}

	return nil
}

func applyEnv(cfg *Config) error {
	// Cloud Run sets PORT, but allow SERVER_PORT override for local dev
	if port := getEnv("PORT", ""); port != "" {
		cfg.Server.Port = port
	} else if port := getEnv("SERVER_PORT", ""); port != "" {
		cfg.Server.Port = port
	}

	if v := os.Getenv("SERVER_READ_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("invalid SERVER_READ_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.ReadTimeout = d
	}

	if v := os.Getenv("SERVER_WRITE_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("invalid SERVER_WRITE_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.WriteTimeout = d
	}

	if v := os.Getenv("SERVER_SHUTDOWN_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("invalid SERVER_SHUTDOWN_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.ShutdownTimeout = d
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.Logging.Level = level
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		switch v {
		case "json", "text":
			cfg.Logging.Format = v
		default:
			return fmt.Errorf("invalid LOG_FORMAT: must be 'json' or 'text'")
		}
	}

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.AdminUsername = getEnv("ADMIN_USERNAME", cfg.Auth.AdminUsername)
	cfg.Auth.AdminPasswordHash = getEnv("ADMIN_PASSWORD_HASH", cfg.Auth.AdminPasswordHash)

	cfg.Storage.DataDir = getEnv("DATA_DIR", cfg.Storage.DataDir)

	if v := os.Getenv("TOPIC_DELAY_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("invalid TOPIC_DELAY_SECONDS: %w", err)
		}
		cfg.Pipeline.TopicDelay = d
	}

	cfg.Publisher.Endpoint = getEnv("ROLLWIKI_ENDPOINT", cfg.Publisher.Endpoint)
	cfg.Publisher.Secret = getEnv("ROLLWIKI_SECRET", cfg.Publisher.Secret)

	cfg.OpenAI.APIKey = getEnv("OPENAI_API_KEY", cfg.OpenAI.APIKey)
	cfg.OpenAI.Model = getEnv("OPENAI_MODEL", cfg.OpenAI.Model)
	cfg.OpenAI.TTSVoice = getEnv("OPENAI_TTS_VOICE", cfg.OpenAI.TTSVoice)

	cfg.Twitter.Enabled = getEnvBool("TWITTER_ENABLED", cfg.Twitter.Enabled)
	cfg.Twitter.APIKey = getEnv("TWITTER_API_KEY", cfg.Twitter.APIKey)
	cfg.Twitter.APISecret = getEnv("TWITTER_API_SECRET", cfg.Twitter.APISecret)
	cfg.Twitter.AccessToken = getEnv("TWITTER_ACCESS_TOKEN", cfg.Twitter.AccessToken)
	cfg.Twitter.AccessTokenSecret = getEnv("TWITTER_ACCESS_TOKEN_SECRET", cfg.Twitter.AccessTokenSecret)
	cfg.Twitter.BearerToken = getEnv("TWITTER_BEARER_TOKEN", cfg.Twitter.BearerToken)

	cfg.Video.Enabled = getEnvBool("VIDEO_ENABLED", cfg.Video.Enabled)
	cfg.Video.PexelsAPIKey = getEnv("PEXELS_API_KEY", cfg.Video.PexelsAPIKey)
	cfg.Video.FFmpegBinary = getEnv("FFMPEG_BINARY", cfg.Video.FFmpegBinary)
	cfg.Video.OutputDir = getEnv("VIDEO_OUTPUT_DIR", cfg.Video.OutputDir)
	cfg.Video.YouTubeToken = getEnv("YOUTUBE_TOKEN", cfg.Video.YouTubeToken)
	cfg.Video.VideoPrivacy = getEnv("YOUTUBE_PRIVACY", cfg.Video.VideoPrivacy)
	cfg.Video.UploadEnabled = getEnvBool("YOUTUBE_UPLOAD_ENABLED", cfg.Video.UploadEnabled)

	if v := os.Getenv("COLLECTOR_MAX_PER_SOURCE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid COLLECTOR_MAX_PER_SOURCE: must be a positive integer")
		}
		cfg.Collector.MaxPerSource = n
	}
	cfg.Collector.CycleEnabled = getEnvBool("COLLECTOR_CYCLE_ENABLED", cfg.Collector.CycleEnabled)
	if v := os.Getenv("COLLECTOR_CYCLE_INTERVAL_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid COLLECTOR_CYCLE_INTERVAL_MINUTES: must be a positive integer")
		}
		cfg.Collector.CycleInterval = time.Duration(n) * time.Minute
	}

	return nil
}

func parseSeconds(raw string) (time.Duration, error) {
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("must be a non-negative integer")
	}
	return time.Duration(seconds) * time.Second, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	switch os.Getenv(key) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return fallback
	}
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch raw {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("must be one of debug, info, warn, error")
	}
}

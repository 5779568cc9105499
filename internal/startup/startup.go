package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"vault-analyzer/internal/logging"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all configuration for the analyzer worker and the safety
// classifier service. Values come from the environment; an optional .env
// file in the working directory is loaded first.
type Config struct {
	// Catalog
	APIURL         string        `env:"API_URL" envDefault:"http://media-vault-api:8080"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	// Directories
	ProcessingPath string `env:"PROCESSING_PATH" envDefault:"/processing"`
	OutputPath     string `env:"OUTPUT_PATH" envDefault:"/uploads"`
	ModelPath      string `env:"MODEL_PATH" envDefault:"/models"`

	// Safety classifier service
	NSFWURL             string  `env:"NSFW_URL" envDefault:"http://nsfw-analyzer:8501"`
	ConfidenceThreshold float64 `env:"CONFIDENCE_THRESHOLD" envDefault:"0.8"`
	ClassifierPort      string  `env:"PORT" envDefault:"8501"`

	// Caption generation (OpenAI-compatible vision endpoint)
	CaptionAPIKey     string        `env:"CAPTION_API_KEY"`
	CaptionBaseURL    string        `env:"CAPTION_BASE_URL"`
	CaptionModel      string        `env:"CAPTION_MODEL" envDefault:"gpt-4o-mini"`
	CaptionTimeout    time.Duration `env:"CAPTION_TIMEOUT" envDefault:"30s"`
	CaptionConfidence float64       `env:"CAPTION_CONFIDENCE" envDefault:"0.85"`

	// Worker pacing
	PollInterval    time.Duration `env:"POLL_INTERVAL" envDefault:"10s"`
	ItemDelay       time.Duration `env:"ITEM_DELAY" envDefault:"1s"`
	BackoffInterval time.Duration `env:"BACKOFF_INTERVAL" envDefault:"30s"`

	// Observability
	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	// Derived
	ThumbnailDir string `env:"-"`
}

// LoadConfig loads and validates configuration from environment variables.
func LoadConfig() (*Config, error) {
	// Best effort; absence of a .env file is the normal deployment case.
	if err := godotenv.Load(); err == nil {
		logging.Debug("Loaded environment overrides from .env")
	}

	printBanner()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.ConfidenceThreshold <= 0 || cfg.ConfidenceThreshold >= 1 {
		return nil, fmt.Errorf("CONFIDENCE_THRESHOLD must be in (0,1), got %v", cfg.ConfidenceThreshold)
	}

	outputPath, err := filepath.Abs(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output path: %w", err)
	}
	cfg.OutputPath = outputPath
	cfg.ThumbnailDir = filepath.Join(outputPath, "thumbnails")

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  API_URL:              %s", cfg.APIURL)
	logging.Info("  NSFW_URL:             %s", cfg.NSFWURL)
	logging.Info("  PROCESSING_PATH:      %s", cfg.ProcessingPath)
	logging.Info("  OUTPUT_PATH:          %s", cfg.OutputPath)
	logging.Info("  MODEL_PATH:           %s", cfg.ModelPath)
	logging.Info("  CONFIDENCE_THRESHOLD: %v", cfg.ConfidenceThreshold)
	logging.Info("  POLL_INTERVAL:        %s", cfg.PollInterval)
	logging.Info("  ITEM_DELAY:           %s", cfg.ItemDelay)
	logging.Info("  BACKOFF_INTERVAL:     %s", cfg.BackoffInterval)
	logging.Info("  REQUEST_TIMEOUT:      %s", cfg.RequestTimeout)
	logging.Info("  CAPTION_MODEL:        %s", cfg.CaptionModel)
	logging.Info("  CAPTION_CONFIGURED:   %v", cfg.CaptionAPIKey != "")
	logging.Info("  METRICS_PORT:         %s", cfg.MetricsPort)
	logging.Info("  LOG_LEVEL:            %s", logging.GetLevel())

	return cfg, nil
}

// EnsureDirectories creates the directories the worker writes to.
// The processing directory is only read, so a missing one is a warning.
func (c *Config) EnsureDirectories() error {
	if _, err := os.Stat(c.ProcessingPath); err != nil {
		logging.Warn("  Processing directory not accessible: %v", err)
	}
	if err := os.MkdirAll(c.ThumbnailDir, 0755); err != nil {
		return fmt.Errorf("failed to create thumbnail directory: %w", err)
	}
	logging.Info("  Thumbnail directory ready: %s", c.ThumbnailDir)
	return nil
}

func printBanner() {
	logging.Info("============================================================")
	logging.Info("  Media Vault Analyzer %s (%s)", Version, Commit)
	logging.Info("  %s %s/%s", GoVersion, runtime.GOOS, runtime.GOARCH)
	logging.Info("============================================================")
}

// LogFatal logs a fatal startup error and exits.
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

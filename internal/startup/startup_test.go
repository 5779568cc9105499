package startup

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("OUTPUT_PATH", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.APIURL != "http://media-vault-api:8080" {
		t.Errorf("APIURL = %q, want default", cfg.APIURL)
	}
	if cfg.NSFWURL != "http://nsfw-analyzer:8501" {
		t.Errorf("NSFWURL = %q, want default", cfg.NSFWURL)
	}
	if cfg.ConfidenceThreshold != 0.8 {
		t.Errorf("ConfidenceThreshold = %v, want 0.8", cfg.ConfidenceThreshold)
	}
	if cfg.PollInterval != 10*time.Second {
		t.Errorf("PollInterval = %v, want 10s", cfg.PollInterval)
	}
	if cfg.ItemDelay != time.Second {
		t.Errorf("ItemDelay = %v, want 1s", cfg.ItemDelay)
	}
	if cfg.BackoffInterval != 30*time.Second {
		t.Errorf("BackoffInterval = %v, want 30s", cfg.BackoffInterval)
	}
	if cfg.CaptionConfidence != 0.85 {
		t.Errorf("CaptionConfidence = %v, want 0.85", cfg.CaptionConfidence)
	}
	if cfg.ThumbnailDir != filepath.Join(cfg.OutputPath, "thumbnails") {
		t.Errorf("ThumbnailDir = %q, want under output path", cfg.ThumbnailDir)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("API_URL", "http://localhost:1234")
	t.Setenv("CONFIDENCE_THRESHOLD", "0.5")
	t.Setenv("POLL_INTERVAL", "2s")
	t.Setenv("OUTPUT_PATH", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.APIURL != "http://localhost:1234" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.ConfidenceThreshold != 0.5 {
		t.Errorf("ConfidenceThreshold = %v", cfg.ConfidenceThreshold)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Errorf("PollInterval = %v", cfg.PollInterval)
	}
}

func TestLoadConfigRejectsBadThreshold(t *testing.T) {
	for _, v := range []string{"0", "1", "1.5", "-0.2"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("CONFIDENCE_THRESHOLD", v)
			if _, err := LoadConfig(); err == nil {
				t.Errorf("LoadConfig() accepted CONFIDENCE_THRESHOLD=%s", v)
			}
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	out := t.TempDir()
	cfg := &Config{
		ProcessingPath: t.TempDir(),
		OutputPath:     out,
		ThumbnailDir:   filepath.Join(out, "thumbnails"),
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories() error: %v", err)
	}

	// Idempotent
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories() second call error: %v", err)
	}
}

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()
	if info.Version == "" || info.GoVersion == "" {
		t.Errorf("GetBuildInfo() returned empty fields: %+v", info)
	}
}

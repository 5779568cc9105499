package analysis

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"
)

func TestThumbnailPathIsDeterministic(t *testing.T) {
	renderer := NewThumbnailRenderer(t.TempDir())

	first := renderer.PathFor("42")
	second := renderer.PathFor("42")

	if first != second {
		t.Errorf("PathFor not deterministic: %q vs %q", first, second)
	}
	if filepath.Base(first) != "42_thumb.jpg" {
		t.Errorf("unexpected thumbnail name %q", filepath.Base(first))
	}
}

func TestRenderFitsBoundingBox(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"landscape", 800, 400},
		{"portrait", 400, 800},
		{"small image is not enlarged beyond box", 100, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srcDir := t.TempDir()
			outDir := t.TempDir()
			src := writeTestJPEG(t, srcDir, "src.jpg", tt.width, tt.height)

			renderer := NewThumbnailRenderer(outDir)
			path, err := renderer.Render(src, "7")
			if err != nil {
				t.Fatalf("Render() error: %v", err)
			}
			if path != renderer.PathFor("7") {
				t.Errorf("Render() path = %q, want %q", path, renderer.PathFor("7"))
			}

			file, err := os.Open(path)
			if err != nil {
				t.Fatalf("open thumbnail: %v", err)
			}
			defer file.Close()

			cfg, format, err := image.DecodeConfig(file)
			if err != nil {
				t.Fatalf("decode thumbnail: %v", err)
			}
			if format != "jpeg" {
				t.Errorf("thumbnail format = %q, want jpeg", format)
			}
			if cfg.Width > ThumbnailSize || cfg.Height > ThumbnailSize {
				t.Errorf("thumbnail %dx%d exceeds %dx%d box", cfg.Width, cfg.Height, ThumbnailSize, ThumbnailSize)
			}
		})
	}
}

func TestRenderPreservesAspectRatio(t *testing.T) {
	src := writeTestJPEG(t, t.TempDir(), "wide.jpg", 600, 300)

	renderer := NewThumbnailRenderer(t.TempDir())
	path, err := renderer.Render(src, "9")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open thumbnail: %v", err)
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}

	// A 2:1 source fitted into 300x300 lands at 300x150.
	if cfg.Width != 300 || cfg.Height != 150 {
		t.Errorf("thumbnail = %dx%d, want 300x150", cfg.Width, cfg.Height)
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	src := writeTestJPEG(t, t.TempDir(), "src.jpg", 500, 500)

	renderer := NewThumbnailRenderer(t.TempDir())
	first, err := renderer.Render(src, "42")
	if err != nil {
		t.Fatalf("first Render() error: %v", err)
	}
	second, err := renderer.Render(src, "42")
	if err != nil {
		t.Fatalf("second Render() error: %v", err)
	}

	if first != second {
		t.Errorf("paths differ across renders: %q vs %q", first, second)
	}

	info, err := os.Stat(first)
	if err != nil {
		t.Fatalf("stat thumbnail: %v", err)
	}
	if info.Size() == 0 {
		t.Error("thumbnail file is empty")
	}
}

func TestRenderFailureReturnsNoThumbnail(t *testing.T) {
	tests := []struct {
		name string
		src  func(t *testing.T) string
	}{
		{
			name: "missing file",
			src: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.jpg")
			},
		},
		{
			name: "corrupt file",
			src: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "junk.jpg")
				if err := os.WriteFile(path, []byte("garbage"), 0644); err != nil {
					t.Fatalf("write fixture: %v", err)
				}
				return path
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer := NewThumbnailRenderer(t.TempDir())
			path, err := renderer.Render(tt.src(t), "13")
			if err == nil {
				t.Fatal("expected error for unusable source")
			}
			if path != "" {
				t.Errorf("path = %q, want empty on failure", path)
			}

			var stageErr *StageError
			if !errors.As(err, &stageErr) {
				t.Errorf("error is not a StageError: %T", err)
			} else if stageErr.Stage != "thumbnail" {
				t.Errorf("StageError.Stage = %q", stageErr.Stage)
			}
		})
	}
}

package analysis

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"time"

	"vault-analyzer/internal/logging"
	"vault-analyzer/internal/metrics"

	"github.com/disintegration/imaging"
)

const (
	// ThumbnailSize is the bounding box thumbnails are fitted into.
	ThumbnailSize = 300

	// thumbnailQuality is the JPEG quality for rendered thumbnails.
	thumbnailQuality = 85
)

// ThumbnailRenderer renders bounded previews of media files into a fixed
// output directory. Rendering is idempotent: the same item id always maps to
// the same path and re-rendering overwrites it with equivalent content.
type ThumbnailRenderer struct {
	outputDir string
}

// NewThumbnailRenderer constructs a renderer writing into outputDir.
func NewThumbnailRenderer(outputDir string) *ThumbnailRenderer {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		logging.Warn("ThumbnailRenderer: failed to create output dir: %v", err)
	}
	return &ThumbnailRenderer{outputDir: outputDir}
}

// PathFor returns the deterministic thumbnail path for an item id.
func (t *ThumbnailRenderer) PathFor(id string) string {
	return filepath.Join(t.outputDir, id+"_thumb.jpg")
}

// Render produces the thumbnail for the given source file and item id and
// returns its path. On any failure it returns ("", error); the caller treats
// that as the explicit "no thumbnail" result and continues.
func (t *ThumbnailRenderer) Render(path, id string) (string, error) {
	start := time.Now()
	var err error
	defer func() {
		metrics.StageDuration.WithLabelValues("thumbnail").Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.StageDegradations.WithLabelValues("thumbnail").Inc()
		}
	}()

	outPath := t.PathFor(id)

	// Fast path: libvips shrinks during decode when available.
	if IsVipsAvailable() {
		data, vipsErr := renderThumbnailVips(path, ThumbnailSize, ThumbnailSize, thumbnailQuality)
		if vipsErr == nil {
			if err = os.WriteFile(outPath, data, 0644); err != nil {
				return "", &StageError{Stage: "thumbnail", Err: err}
			}
			return outPath, nil
		}
		logging.Debug("Vips thumbnail failed for %s: %v, falling back to pure Go", path, vipsErr)
	}

	img, err := openImage(path)
	if err != nil {
		return "", &StageError{Stage: "thumbnail", Err: err}
	}

	thumb := imaging.Fit(img, ThumbnailSize, ThumbnailSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err = jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return "", &StageError{Stage: "thumbnail", Err: fmt.Errorf("failed to encode thumbnail: %w", err)}
	}

	if err = os.WriteFile(outPath, buf.Bytes(), 0644); err != nil {
		return "", &StageError{Stage: "thumbnail", Err: err}
	}

	logging.Debug("Thumbnail written: %s (%d bytes)", outPath, buf.Len())
	return outPath, nil
}

// openImage decodes a source image, preferring imaging's auto-orientation and
// falling back to a plain decode for formats imaging cannot open directly.
func openImage(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}

	logging.Debug("imaging.Open failed for %s: %v, trying standard decode", path, err)

	file, openErr := os.Open(path)
	if openErr != nil {
		return nil, openErr
	}
	defer file.Close()

	img, format, decodeErr := image.Decode(file)
	if decodeErr != nil {
		return nil, fmt.Errorf("all decode methods failed for %s: %w", path, decodeErr)
	}

	logging.Debug("Decoded image format: %s for %s", format, path)
	return img, nil
}

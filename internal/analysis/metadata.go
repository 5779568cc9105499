package analysis

import (
	"image"
	"os"
	"time"

	"vault-analyzer/internal/logging"
	"vault-analyzer/internal/mediatypes"
	"vault-analyzer/internal/metrics"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp"
)

// ExtractMetadata reads structural and capture metadata from an image file.
// It never fails the item: any read or parse error yields an empty map and
// the caller records the degradation. The file is only read, never modified.
func ExtractMetadata(path string) map[string]interface{} {
	start := time.Now()
	defer func() {
		metrics.StageDuration.WithLabelValues("metadata").Observe(time.Since(start).Seconds())
	}()

	md := make(map[string]interface{})

	file, err := os.Open(path)
	if err != nil {
		logging.Warn("Metadata: cannot open %s: %v", path, err)
		metrics.StageDegradations.WithLabelValues("metadata").Inc()
		return md
	}
	defer file.Close()

	cfg, format, err := image.DecodeConfig(file)
	if err != nil {
		logging.Warn("Metadata: cannot decode %s: %v", path, err)
		metrics.StageDegradations.WithLabelValues("metadata").Inc()
		return md
	}

	md["width"] = cfg.Width
	md["height"] = cfg.Height
	md["format"] = format

	// The decoder's format name can disagree with the bytes for renamed
	// uploads; the magic-byte sniff wins when it knows better.
	if sniffed, err := mediatypes.DetectFormat(path); err == nil && sniffed != "unknown" {
		md["format"] = sniffed
	}

	addExifTags(file, path, md)

	return md
}

// addExifTags merges camera tags into md when the file carries EXIF data.
// Absence of EXIF is normal (screenshots, stripped uploads) and not a
// degradation.
func addExifTags(file *os.File, path string, md map[string]interface{}) {
	if _, err := file.Seek(0, 0); err != nil {
		return
	}

	x, err := exif.Decode(file)
	if err != nil {
		logging.Debug("Metadata: no EXIF in %s: %v", path, err)
		return
	}

	if tag, err := x.Get(exif.Make); err == nil {
		if make, err := tag.StringVal(); err == nil && make != "" {
			md["camera_make"] = make
		}
	}
	if tag, err := x.Get(exif.Model); err == nil {
		if model, err := tag.StringVal(); err == nil && model != "" {
			md["camera_model"] = model
		}
	}
	if taken, err := x.DateTime(); err == nil {
		md["taken_at"] = taken.Format("2006-01-02 15:04:05")
	}
}

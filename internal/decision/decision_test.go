package decision

import (
	"testing"
	"time"

	"vault-analyzer/internal/analysis"
	"vault-analyzer/internal/catalog"
	"vault-analyzer/internal/safety"
)

func safeVerdict() safety.Verdict {
	return safety.Verdict{
		IsNSFW:     false,
		Confidence: 0.09,
		Categories: safety.Categories{Safe: 0.91, Suggestive: 0.05, Explicit: 0.04},
	}
}

func unsafeVerdict() safety.Verdict {
	return safety.Verdict{
		IsNSFW:     true,
		Confidence: 0.85,
		Categories: safety.Categories{Safe: 0.15, Suggestive: 0.05, Explicit: 0.80},
	}
}

// TestStatusDecisionTable covers every combination of the three input
// signals: unsafe verdict, degraded caption, and empty metadata.
func TestStatusDecisionTable(t *testing.T) {
	realCaption := "a mountain lake at dawn"
	someMetadata := map[string]interface{}{"width": 640, "height": 480, "format": "jpeg"}

	tests := []struct {
		name     string
		unsafe   bool
		caption  string
		metadata map[string]interface{}
		want     string
	}{
		{"unsafe, caption, metadata", true, realCaption, someMetadata, catalog.StatusRejected},
		{"unsafe, caption, no metadata", true, realCaption, nil, catalog.StatusRejected},
		{"unsafe, no caption, metadata", true, analysis.CaptionSentinel, someMetadata, catalog.StatusRejected},
		{"unsafe, no caption, no metadata", true, analysis.CaptionSentinel, nil, catalog.StatusRejected},
		{"safe, caption, metadata", false, realCaption, someMetadata, catalog.StatusApproved},
		{"safe, caption, no metadata", false, realCaption, nil, catalog.StatusApproved},
		{"safe, no caption, metadata", false, analysis.CaptionSentinel, someMetadata, catalog.StatusApproved},
		{"safe, no caption, no metadata", false, analysis.CaptionSentinel, nil, catalog.StatusFlagged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := safeVerdict()
			if tt.unsafe {
				verdict = unsafeVerdict()
			}
			result := AnalysisResult{
				Caption:  tt.caption,
				Metadata: tt.metadata,
				Safety:   verdict,
			}
			if got := result.Status(); got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusIsDeterministic(t *testing.T) {
	result := AnalysisResult{
		Caption:  analysis.CaptionSentinel,
		Metadata: nil,
		Safety:   safeVerdict(),
	}

	first := result.Status()
	for i := 0; i < 10; i++ {
		if got := result.Status(); got != first {
			t.Fatalf("Status() changed between calls: %q then %q", first, got)
		}
	}
}

func TestStatusEmptyThumbnailDoesNotFlag(t *testing.T) {
	// A missing thumbnail alone is not grounds for flagging; the policy only
	// looks at caption and metadata for the insufficient-signal case.
	result := AnalysisResult{
		Caption:       "a red bicycle against a wall",
		Metadata:      map[string]interface{}{"width": 100},
		ThumbnailPath: "",
		Safety:        safeVerdict(),
	}

	if got := result.Status(); got != catalog.StatusApproved {
		t.Errorf("Status() = %q, want approved", got)
	}
}

func TestAggregate(t *testing.T) {
	processedAt := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	result := AnalysisResult{
		Caption:           "a cat on a sofa",
		CaptionConfidence: 0.85,
		Metadata:          map[string]interface{}{"width": 640, "height": 480},
		ThumbnailPath:     "/uploads/thumbnails/42_thumb.jpg",
		Safety:            safeVerdict(),
	}

	d := Aggregate(result, processedAt)

	if d.AIDescription != "a cat on a sofa" {
		t.Errorf("AIDescription = %q", d.AIDescription)
	}
	if d.AIConfidence != 0.85 {
		t.Errorf("AIConfidence = %v", d.AIConfidence)
	}
	if d.ThumbnailPath != "/uploads/thumbnails/42_thumb.jpg" {
		t.Errorf("ThumbnailPath = %q", d.ThumbnailPath)
	}
	if d.ProcessedAt != "2026-01-02 15:04:05" {
		t.Errorf("ProcessedAt = %q", d.ProcessedAt)
	}
	if d.ModerationStatus != catalog.StatusApproved {
		t.Errorf("ModerationStatus = %q", d.ModerationStatus)
	}
}

func TestAggregateNilMetadataBecomesEmptyObject(t *testing.T) {
	d := Aggregate(AnalysisResult{Caption: "x", Safety: safeVerdict()}, time.Now())
	if d.Metadata == nil {
		t.Error("Metadata should be an empty map, not nil")
	}
	if len(d.Metadata) != 0 {
		t.Errorf("Metadata = %v, want empty", d.Metadata)
	}
}

func TestAggregateRepeatedCallsEqual(t *testing.T) {
	processedAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	result := AnalysisResult{
		Caption: analysis.CaptionSentinel,
		Safety:  unsafeVerdict(),
	}

	first := Aggregate(result, processedAt)
	second := Aggregate(result, processedAt)

	if first.ModerationStatus != second.ModerationStatus ||
		first.ProcessedAt != second.ProcessedAt ||
		first.AIDescription != second.AIDescription {
		t.Errorf("Aggregate not deterministic: %+v vs %+v", first, second)
	}
	if first.ModerationStatus != catalog.StatusRejected {
		t.Errorf("ModerationStatus = %q, want rejected", first.ModerationStatus)
	}
}

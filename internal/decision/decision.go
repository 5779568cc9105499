package decision

import (
	"time"

	"vault-analyzer/internal/analysis"
	"vault-analyzer/internal/catalog"
	"vault-analyzer/internal/safety"
)

// processedAtLayout matches the catalog's expected timestamp format.
const processedAtLayout = "2006-01-02 15:04:05"

// AnalysisResult collects the per-stage outputs for one item. It is built
// incrementally by the worker, never shared between items, and discarded once
// the decision is committed.
type AnalysisResult struct {
	Caption           string
	CaptionConfidence float64
	Metadata          map[string]interface{}
	ThumbnailPath     string
	Safety            safety.Verdict
}

// Status derives the moderation status from the collected signals. The rule
// is total and deterministic:
//
//  1. an unsafe verdict rejects the item regardless of other signals;
//  2. with no caption and no metadata there is not enough signal for
//     automatic approval, so the item is flagged for human review;
//  3. everything else is approved.
func (r AnalysisResult) Status() string {
	if r.Safety.IsNSFW {
		return catalog.StatusRejected
	}
	if r.Caption == analysis.CaptionSentinel && len(r.Metadata) == 0 {
		return catalog.StatusFlagged
	}
	return catalog.StatusApproved
}

// Aggregate merges the stage outputs into the decision written back to the
// catalog. Pure: same inputs always produce the same decision.
func Aggregate(result AnalysisResult, processedAt time.Time) catalog.ModerationDecision {
	metadata := result.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	return catalog.ModerationDecision{
		AIDescription:    result.Caption,
		AIConfidence:     result.CaptionConfidence,
		Metadata:         metadata,
		ThumbnailPath:    result.ThumbnailPath,
		ProcessedAt:      processedAt.UTC().Format(processedAtLayout),
		ModerationStatus: result.Status(),
	}
}

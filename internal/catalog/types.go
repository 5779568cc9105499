package catalog

// Status values a media item moves through. The catalog owns the lifecycle;
// the analyzer only reads pending items and proposes a terminal status.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusApproved   = "approved"
	StatusFlagged    = "flagged"
	StatusRejected   = "rejected"
	StatusFailed     = "failed"
)

// MediaItem is the minimal view of a catalog record the analyzer needs.
type MediaItem struct {
	ID       string `json:"id"`
	FilePath string `json:"file_path"`
	Status   string `json:"status,omitempty"`
}

// ModerationDecision is the verdict written back to the catalog for one item.
type ModerationDecision struct {
	AIDescription    string                 `json:"ai_description"`
	AIConfidence     float64                `json:"ai_confidence"`
	Metadata         map[string]interface{} `json:"metadata"`
	ThumbnailPath    string                 `json:"thumbnail_path"`
	ProcessedAt      string                 `json:"processed_at"`
	ModerationStatus string                 `json:"moderation_status"`
}

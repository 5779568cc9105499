package safety

// Categories holds per-category probabilities from the classifier. The three
// values are expected, but not enforced, to sum to roughly 1.
type Categories struct {
	Safe       float64 `json:"safe"`
	Suggestive float64 `json:"suggestive"`
	Explicit   float64 `json:"explicit"`
}

// Verdict is the classifier's result for a single image.
type Verdict struct {
	IsNSFW     bool       `json:"is_nsfw"`
	Confidence float64    `json:"confidence"`
	Categories Categories `json:"categories"`
}

// MockVerdict is what the classifier reports when no model is loaded. It is
// deliberately safe-dominant so degraded deployments keep flowing; callers
// should treat it as informational, not authoritative.
func MockVerdict() Verdict {
	return Verdict{
		IsNSFW:     false,
		Confidence: 0.1,
		Categories: Categories{Safe: 0.9, Suggestive: 0.05, Explicit: 0.05},
	}
}

// Evaluate derives the boolean verdict from category probabilities: an image
// is unsafe when the combined suggestive and explicit mass exceeds threshold.
func Evaluate(c Categories, threshold float64) Verdict {
	confidence := c.Suggestive + c.Explicit
	return Verdict{
		IsNSFW:     confidence > threshold,
		Confidence: confidence,
		Categories: c,
	}
}

// HealthStatus is the classifier's liveness report.
type HealthStatus struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// BatchEntry is one element of a batch classification response. Exactly one
// of Result or Error is set; a bad path never fails the surrounding batch.
type BatchEntry struct {
	ImagePath string   `json:"image_path"`
	Result    *Verdict `json:"result,omitempty"`
	Error     string   `json:"error,omitempty"`
}

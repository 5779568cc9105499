// Package classifier implements the content-safety classification service:
// image preprocessing, the pluggable predictor, threshold-based verdict
// derivation, and the HTTP surface (/health, /analyze, /batch-analyze).
//
// The predictor is an explicitly constructed, explicitly owned dependency.
// When no model file is present under the configured model directory the
// service runs in mock mode: it reports model_loaded=false on /health and
// returns a documented safe-dominant verdict for every request, so degraded
// and development deployments keep the pipeline functional.
package classifier

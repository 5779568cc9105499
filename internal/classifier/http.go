package classifier

import (
	"errors"
	"net/http"
	"strconv"

	"vault-analyzer/internal/logging"
	"vault-analyzer/internal/metrics"
	"vault-analyzer/internal/middleware"
	"vault-analyzer/internal/safety"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type analyzeRequest struct {
	ImagePath string `json:"image_path"`
}

type batchAnalyzeRequest struct {
	ImagePaths []string `json:"image_paths"`
}

type batchAnalyzeResponse struct {
	Results []safety.BatchEntry `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Router builds the classifier's HTTP surface.
func (s *Service) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/analyze", s.handleAnalyze).Methods(http.MethodPost)
	r.HandleFunc("/batch-analyze", s.handleBatchAnalyze).Methods(http.MethodPost)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return middleware.Chain(r, middleware.RequestID, middleware.Logger, middleware.Metrics)
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, safety.HealthStatus{
		Status:      "healthy",
		ModelLoaded: s.ModelLoaded(),
	})
	metrics.ClassifierRequestsTotal.WithLabelValues("health", "200").Inc()
}

func (s *Service) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "analyze", http.StatusBadRequest, "Invalid request body")
		return
	}

	verdict, err := s.Classify(req.ImagePath)
	if err != nil {
		if errors.Is(err, ErrInvalidPath) {
			s.writeError(w, "analyze", http.StatusBadRequest, "Invalid image path")
			return
		}
		logging.Error("Analysis failed for %s: %v", req.ImagePath, err)
		s.writeError(w, "analyze", http.StatusInternalServerError, "Analysis failed")
		return
	}

	writeJSON(w, http.StatusOK, verdict)
	metrics.ClassifierRequestsTotal.WithLabelValues("analyze", "200").Inc()
}

func (s *Service) handleBatchAnalyze(w http.ResponseWriter, r *http.Request) {
	var req batchAnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "batch_analyze", http.StatusBadRequest, "Invalid request body")
		return
	}

	results := s.ClassifyBatch(req.ImagePaths)

	writeJSON(w, http.StatusOK, batchAnalyzeResponse{Results: results})
	metrics.ClassifierRequestsTotal.WithLabelValues("batch_analyze", "200").Inc()
}

func (s *Service) writeError(w http.ResponseWriter, endpoint string, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
	metrics.ClassifierRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("Failed to encode response: %v", err)
	}
}

package classifier

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"vault-analyzer/internal/logging"
	"vault-analyzer/internal/metrics"
	"vault-analyzer/internal/safety"
	"vault-analyzer/internal/workers"
)

// ErrInvalidPath reports a missing or unreadable image path in a request.
var ErrInvalidPath = errors.New("invalid image path")

// Service evaluates images against the content-safety model. The predictor
// is an explicitly owned dependency: when none is configured the service
// serves documented mock verdicts instead of failing.
type Service struct {
	predictor Predictor
	threshold float64
}

// New constructs the service. predictor may be nil (mock mode).
func New(predictor Predictor, threshold float64) *Service {
	if threshold <= 0 || threshold >= 1 {
		threshold = 0.8
	}

	if predictor != nil {
		metrics.ClassifierModelLoaded.Set(1)
	} else {
		metrics.ClassifierModelLoaded.Set(0)
	}

	return &Service{predictor: predictor, threshold: threshold}
}

// ModelLoaded reports whether a real predictor is configured.
func (s *Service) ModelLoaded() bool {
	return s.predictor != nil
}

// Threshold returns the configured unsafe-verdict threshold.
func (s *Service) Threshold() float64 {
	return s.threshold
}

// Classify scores a single image. Requests for unreadable paths return
// ErrInvalidPath; in mock mode every readable path gets the mock verdict.
func (s *Service) Classify(imagePath string) (safety.Verdict, error) {
	start := time.Now()
	defer func() {
		metrics.ClassifierInferenceDuration.Observe(time.Since(start).Seconds())
	}()

	if imagePath == "" {
		return safety.Verdict{}, ErrInvalidPath
	}
	if _, err := os.Stat(imagePath); err != nil {
		return safety.Verdict{}, fmt.Errorf("%w: %w", ErrInvalidPath, err)
	}

	if s.predictor == nil {
		return safety.MockVerdict(), nil
	}

	img, err := preprocess(imagePath)
	if err != nil {
		return safety.Verdict{}, fmt.Errorf("preprocessing failed: %w", err)
	}

	categories, err := s.predictor.Predict(img)
	if err != nil {
		return safety.Verdict{}, fmt.Errorf("prediction failed: %w", err)
	}

	verdict := safety.Evaluate(categories, s.threshold)
	if verdict.IsNSFW {
		metrics.ClassifierUnsafeVerdicts.Inc()
		logging.Info("Unsafe content detected: %s (confidence %.2f)", imagePath, verdict.Confidence)
	}
	return verdict, nil
}

// ClassifyBatch scores several images with bounded concurrency. Failures are
// carried per element; one bad path never fails the batch.
func (s *Service) ClassifyBatch(imagePaths []string) []safety.BatchEntry {
	entries := make([]safety.BatchEntry, len(imagePaths))

	sem := make(chan struct{}, workers.ForCPU(8))
	var wg sync.WaitGroup
	for i, path := range imagePaths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			entries[i].ImagePath = path
			verdict, err := s.Classify(path)
			if err != nil {
				entries[i].Error = batchErrorMessage(err)
				return
			}
			entries[i].Result = &verdict
		}(i, path)
	}
	wg.Wait()

	return entries
}

// batchErrorMessage keeps the wire format stable for the common case of a
// path that does not exist.
func batchErrorMessage(err error) string {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return "File not found"
	}
	return err.Error()
}

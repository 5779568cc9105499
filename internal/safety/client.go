package safety

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"vault-analyzer/internal/logging"
	"vault-analyzer/internal/metrics"

	"github.com/goccy/go-json"
)

// Client calls the safety classifier service from the worker.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a classifier client with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type analyzeRequest struct {
	ImagePath string `json:"image_path"`
}

type batchRequest struct {
	ImagePaths []string `json:"image_paths"`
}

type batchResponse struct {
	Results []BatchEntry `json:"results"`
}

// Classify requests a verdict for a single image path.
func (c *Client) Classify(ctx context.Context, imagePath string) (Verdict, error) {
	start := time.Now()
	defer func() {
		metrics.StageDuration.WithLabelValues("safety").Observe(time.Since(start).Seconds())
	}()

	var verdict Verdict
	err := c.post(ctx, "/analyze", analyzeRequest{ImagePath: imagePath}, &verdict)
	if err != nil {
		return Verdict{}, err
	}
	return verdict, nil
}

// ClassifyBatch requests verdicts for several image paths in one call.
// Per-element failures are carried in the entries, not as a call error.
func (c *Client) ClassifyBatch(ctx context.Context, imagePaths []string) ([]BatchEntry, error) {
	var resp batchResponse
	if err := c.post(ctx, "/batch-analyze", batchRequest{ImagePaths: imagePaths}, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Health reports service liveness and whether a real model is loaded.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return HealthStatus{}, fmt.Errorf("failed to build health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return HealthStatus{}, fmt.Errorf("classifier health request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return HealthStatus{}, fmt.Errorf("classifier health: status %d", resp.StatusCode)
	}

	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return HealthStatus{}, fmt.Errorf("failed to decode health response: %w", err)
	}
	return status, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("classifier %s request: %w", path, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("classifier %s: status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// ClassifyOrDegrade wraps Classify with the stage degradation policy: when
// the service is unreachable or errors, the worker proceeds with the mock
// verdict rather than failing the item.
func (c *Client) ClassifyOrDegrade(ctx context.Context, imagePath string) Verdict {
	verdict, err := c.Classify(ctx, imagePath)
	if err != nil {
		logging.Warn("Safety classification failed for %s: %v, using mock verdict", imagePath, err)
		metrics.StageDegradations.WithLabelValues("safety").Inc()
		return MockVerdict()
	}
	return verdict
}

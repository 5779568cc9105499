package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"vault-analyzer/internal/logging"
	"vault-analyzer/internal/metrics"

	"github.com/goccy/go-json"
)

// Client talks to the media vault catalog API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a catalog client. timeout bounds every request;
// zero means 30 seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ListPending fetches the items awaiting analysis. An empty slice is the
// steady state when nothing has been uploaded, not an error.
func (c *Client) ListPending(ctx context.Context) ([]MediaItem, error) {
	start := time.Now()
	var err error
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.CatalogRequestsTotal.WithLabelValues("list_pending", status).Inc()
		metrics.CatalogRequestDuration.WithLabelValues("list_pending").Observe(time.Since(start).Seconds())
	}()

	endpoint := c.baseURL + "/api/admin/photos/pending"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build pending request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog list_pending request: %w", err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err = newAPIError("list_pending", resp.StatusCode)
		return nil, err
	}

	var items []MediaItem
	if err = json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode pending items: %w", err)
	}

	logging.Debug("Catalog returned %d pending item(s)", len(items))
	return items, nil
}

// UpdateItem writes a moderation decision back to the catalog. The write is
// idempotent on the catalog side, so callers may safely retry transient
// failures by reprocessing the item on a later cycle.
func (c *Client) UpdateItem(ctx context.Context, id string, decision ModerationDecision) error {
	start := time.Now()
	var err error
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.CatalogRequestsTotal.WithLabelValues("update_item", status).Inc()
		metrics.CatalogRequestDuration.WithLabelValues("update_item").Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(decision)
	if err != nil {
		return fmt.Errorf("failed to encode decision: %w", err)
	}

	endpoint := c.baseURL + "/api/vault/files/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Length", strconv.Itoa(len(body)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog update_item request: %w", err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err = newAPIError("update_item", resp.StatusCode)
		return err
	}

	return nil
}

// drainAndClose reads the remainder of a response body so the connection can
// be reused, then closes it.
func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
	_ = body.Close()
}

// Package ingestclient implements the stateless HTTP surface for presign
// and ingest calls, both single-shot with no retry policy of their own —
// retry, if any, lives at the caller's layer (Batcher's re-queue, the blob
// uploader's backoff loop).
//
// Request building follows the same shape as this module's webhook
// adapter: JSON body, a fixed header, status-code classification, with no
// retry loop — that responsibility stays one layer up.
package ingestclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mhetreayush/xray-sdk/iox"
	"github.com/mhetreayush/xray-sdk/types"
)

// Client is the ingest-service HTTP surface.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a Client. timeout bounds a single request/response round
// trip; zero uses http.DefaultClient's no-timeout behavior.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	hc := &http.Client{}
	if timeout > 0 {
		hc.Timeout = timeout
	}
	return &Client{baseURL: baseURL, apiKey: apiKey, http: hc}
}

// StatusError is returned for any non-2xx HTTP response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ingestclient: unexpected status %d", e.Code)
}

// Presign requests a presigned upload URL for a data blob.
func (c *Client) Presign(ctx context.Context, req types.PresignRequest) (*types.PresignResponse, error) {
	var resp types.PresignResponse
	if err := c.post(ctx, "/api/v1/presign", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ingest submits a batch of events.
func (c *Client) Ingest(ctx context.Context, req types.IngestRequest) (*types.IngestResponse, error) {
	var resp types.IngestResponse
	if err := c.post(ctx, "/api/v1/ingest", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("ingestclient: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("ingestclient: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("ingestclient: request failed: %w", err)
	}
	defer iox.DiscardClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("ingestclient: decode response: %w", err)
		}
	}
	return nil
}

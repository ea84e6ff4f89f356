package post

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// uploadTimeout bounds one website upload attempt.
const uploadTimeout = 10 * time.Second

// maxErrorBody limits how much of an error response ends up in logs.
const maxErrorBody = 512

// Payload is the website upload body for a completed post.
type Payload struct {
	Topic       string `json:"topic"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Tag         string `json:"tag"`
	Source      string `json:"source"`
}

// WebsiteClient uploads completed posts to the community website API.
type WebsiteClient struct {
	url    string
	client *http.Client
}

// NewWebsiteClient creates a client for the given upload endpoint. A zero
// timeout selects the 10s default.
func NewWebsiteClient(url string, timeout time.Duration) *WebsiteClient {
	if timeout <= 0 {
		timeout = uploadTimeout
	}
	return &WebsiteClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// URL returns the configured upload endpoint.
func (c *WebsiteClient) URL() string {
	return c.url
}

// Upload POSTs the payload as JSON. Anything other than HTTP 200 is an error.
func (c *WebsiteClient) Upload(ctx context.Context, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("website: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("website: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("website: upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("website: upload status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

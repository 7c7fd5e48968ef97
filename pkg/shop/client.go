// Package shop talks to the shop backend HTTP API: content feed, remote
// carousel index and the photo capture pipeline.
package shop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/copylaradio/go-vitrine/internal/httpc"
	"github.com/copylaradio/go-vitrine/pkg/protocol"
)

// Client is an HTTP client for the shop backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a shop client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpc.Client,
	}
}

// Events fetches the current content feed.
func (c *Client) Events(ctx context.Context) (*protocol.FeedResponse, error) {
	var feed protocol.FeedResponse
	if err := c.getJSON(ctx, "/api/events", &feed); err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	return &feed, nil
}

// SetIndex reports the local carousel position to the backend so other
// surfaces stay in sync. Best effort; the caller does not retry.
func (c *Client) SetIndex(ctx context.Context, index int) error {
	payload := map[string]int{"index": index}
	return c.postJSON(ctx, "/api/set_index", payload, nil)
}

// Capture triggers the backend photo pipeline (camera, storage, publish,
// QR rendering) and returns its outcome. The call blocks for the full
// pipeline duration, so run it off the event loop.
func (c *Client) Capture(ctx context.Context) (*protocol.CaptureResult, error) {
	var result protocol.CaptureResult
	if err := c.postJSON(ctx, "/api/capture", nil, &result); err != nil {
		return nil, fmt.Errorf("capture request failed: %w", err)
	}
	return &result, nil
}

// QR fetches the standing shop QR payload displayed while the kiosk
// idles. Cached by the caller; the payload rarely changes.
func (c *Client) QR(ctx context.Context) (*protocol.QRPayload, error) {
	var qr protocol.QRPayload
	if err := c.getJSON(ctx, "/api/qr", &qr); err != nil {
		return nil, fmt.Errorf("qr request failed: %w", err)
	}
	return &qr, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out interface{}) error {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

package roomapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/SpooderfyBot/room/pkg/wire"
)

const defaultTimeout = 10 * time.Second

// Client talks to the relay's REST endpoints.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a Client for the relay at baseURL (scheme + host). A nil
// httpClient gets a default with a sane timeout; pass an auth-injecting
// client from config.Auth.HTTPClient for authenticated relays.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: baseURL, client: httpClient}
}

// WhoAmI returns the identity of the authenticated user.
func (c *Client) WhoAmI(ctx context.Context) (wire.Identity, error) {
	var id wire.Identity
	err := c.getJSON(ctx, c.baseURL+"/api/@me", &id)
	return id, err
}

// Webhook returns the room's chat relay webhook.
func (c *Client) Webhook(ctx context.Context, roomID string) (wire.Webhook, error) {
	var wh wire.Webhook
	err := c.getJSON(ctx, fmt.Sprintf("%s/api/room/%s/webhook", c.baseURL, roomID), &wh)
	return wh, err
}

// StreamInfo returns the room's live-stream source URL.
func (c *Client) StreamInfo(ctx context.Context, roomID string) (wire.StreamInfo, error) {
	var si wire.StreamInfo
	err := c.getJSON(ctx, fmt.Sprintf("%s/api/room/%s/stream", c.baseURL, roomID), &si)
	return si, err
}

// SubmitTimeCheck reports the current playback position to the relay.
func (c *Client) SubmitTimeCheck(ctx context.Context, roomID string, position int) error {
	body, err := json.Marshal(wire.TimeCheck{Position: position})
	if err != nil {
		return fmt.Errorf("roomapi: marshal time check: %w", err)
	}

	url := fmt.Sprintf("%s/api/room/%s/timesubmit", c.baseURL, roomID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("roomapi: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("roomapi: time check post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("roomapi: time check returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("roomapi: build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("roomapi: http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("roomapi: %s returned HTTP %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("roomapi: decode response: %w", err)
	}
	return nil
}

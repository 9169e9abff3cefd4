package emit

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/SpooderfyBot/room/pkg/wire"
)

const defaultTimeout = 10 * time.Second

// Emitter publishes envelopes to the relay's emit endpoint.
type Emitter struct {
	baseURL string
	client  *http.Client
}

// New creates an Emitter for the relay at baseURL (scheme + host, no
// trailing slash). A nil client gets a default with a sane timeout.
func New(baseURL string, client *http.Client) *Emitter {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Emitter{baseURL: baseURL, client: client}
}

// Publish sends env to roomID's emit endpoint. Fire-and-forget: any failure
// is logged and dropped, never surfaced to the caller.
func (e *Emitter) Publish(ctx context.Context, roomID string, env wire.Envelope) {
	if err := e.put(ctx, roomID, env); err != nil {
		slog.Warn("emit: publish failed", "room", roomID, "opcode", env.Opcode, "err", err)
	}
}

func (e *Emitter) put(ctx context.Context, roomID string, env wire.Envelope) error {
	body, err := env.Encode()
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/room/%s/emit", e.baseURL, roomID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("emit: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("emit: http put: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("emit: relay returned HTTP %d", resp.StatusCode)
	}
	return nil
}

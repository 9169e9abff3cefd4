package player

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const probeTimeout = 5 * time.Second

// HealthChecker probes the live-stream source on its own timer and invokes
// OnDown when the source stops answering, so the surrounding application
// can reload the stream. It is deliberately independent of the connection
// engine: a dead stream and a dead socket are different failures.
type HealthChecker struct {
	// StreamURL is the source to probe.
	StreamURL string

	// Interval between probes.
	Interval time.Duration

	// OnDown fires once per transition from healthy to unhealthy.
	OnDown func()

	// Client overrides the probe HTTP client; nil gets a default with a
	// short timeout.
	Client *http.Client

	healthy bool
}

// Run probes until ctx is cancelled.
func (h *HealthChecker) Run(ctx context.Context) {
	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: probeTimeout}
	}

	ticker := time.NewTicker(h.Interval)
	defer ticker.Stop()

	// Assume healthy until the first probe says otherwise.
	h.healthy = true

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := probe(ctx, client, h.StreamURL)
			switch {
			case err != nil && h.healthy:
				h.healthy = false
				slog.Warn("player: stream went down", "url", h.StreamURL, "err", err)
				if h.OnDown != nil {
					h.OnDown()
				}
			case err == nil && !h.healthy:
				h.healthy = true
				slog.Info("player: stream recovered", "url", h.StreamURL)
			}
		}
	}
}

func probe(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return fmt.Errorf("player: build probe request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("player: stream probe: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("player: stream returned HTTP %d", resp.StatusCode)
	}
	return nil
}

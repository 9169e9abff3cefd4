package player

import (
	"context"
	"log/slog"
	"time"
)

// TimeSubmitter posts a playback position to the relay. Satisfied by
// roomapi.Client.
type TimeSubmitter interface {
	SubmitTimeCheck(ctx context.Context, roomID string, position int) error
}

// RunReporter periodically submits the local playback position while the
// player is playing. It blocks until ctx is cancelled; failures are logged
// and the next tick tries again.
func (p *Player) RunReporter(ctx context.Context, interval time.Duration, submitter TimeSubmitter) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("player: time-check reporter started", "room", p.roomID, "interval", interval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !p.Playing() {
				continue
			}
			if err := submitter.SubmitTimeCheck(ctx, p.roomID, p.Position()); err != nil {
				slog.Warn("player: time-check submit failed", "room", p.roomID, "err", err)
			}
		}
	}
}

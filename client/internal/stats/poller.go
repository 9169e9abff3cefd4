package stats

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

const defaultPollTimeout = 10 * time.Second

// Relay metric names we track.
const (
	// Members currently connected, labelled by room.
	metricRoomMembers = "room_relay_room_members"

	// Live rooms on the relay.
	metricRooms = "room_relay_rooms"
)

// Snapshot is one poll's worth of room figures.
type Snapshot struct {
	// Members connected to our room.
	Members int

	// Rooms live on the whole relay.
	Rooms int

	PolledAt time.Time
}

// Poller periodically scrapes the relay's /metrics endpoint.
type Poller struct {
	metricsURL string
	roomID     string
	client     *http.Client

	mu       sync.Mutex
	interval time.Duration
	snap     Snapshot
	have     bool
	onUpdate func()
}

// NewPoller creates a poller for roomID against the relay's metrics
// endpoint. A nil client gets a default with a sane timeout.
func NewPoller(metricsURL, roomID string, client *http.Client) *Poller {
	if client == nil {
		client = &http.Client{Timeout: defaultPollTimeout}
	}
	return &Poller{metricsURL: metricsURL, roomID: roomID, client: client}
}

// OnUpdate sets the hook invoked after each successful poll.
func (p *Poller) OnUpdate(fn func()) {
	p.mu.Lock()
	p.onUpdate = fn
	p.mu.Unlock()
}

// Snapshot returns the latest figures and whether a poll has succeeded yet.
func (p *Poller) Snapshot() (Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap, p.have
}

// Run polls every interval until ctx is cancelled. Failed polls are logged
// and leave the previous snapshot in place. The interval can be changed
// while running via SetInterval.
func (p *Poller) Run(ctx context.Context, interval time.Duration) {
	p.SetInterval(interval)

	slog.Info("stats: poller started", "url", p.metricsURL, "room", p.roomID, "interval", interval)

	for {
		timer := time.NewTimer(p.currentInterval())
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			p.poll(ctx)
		}
	}
}

// SetInterval changes how often Run polls, taking effect after the wait
// currently in progress. Non-positive durations are ignored.
func (p *Poller) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	p.mu.Lock()
	p.interval = d
	p.mu.Unlock()
}

func (p *Poller) currentInterval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}

func (p *Poller) poll(ctx context.Context) {
	mfs, err := fetchMetrics(ctx, p.client, p.metricsURL)
	if err != nil {
		slog.Warn("stats: poll failed", "url", p.metricsURL, "err", err)
		return
	}

	snap := Snapshot{
		Members:  int(gaugeForLabel(mfs[metricRoomMembers], "room", p.roomID)),
		Rooms:    int(sumFamily(mfs[metricRooms])),
		PolledAt: time.Now().UTC(),
	}

	p.mu.Lock()
	p.snap = snap
	p.have = true
	fn := p.onUpdate
	p.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// fetchMetrics performs an HTTP GET to url and returns parsed metric families.
func fetchMetrics(ctx context.Context, client *http.Client, url string) (map[string]*dto.MetricFamily, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", string(expfmt.NewFormat(expfmt.TypeTextPlain)))

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return parseMetrics(resp.Body)
}

// parseMetrics decodes a Prometheus text exposition from r into metric
// families. A partial result with a non-fatal parse warning is still
// returned successfully.
func parseMetrics(r io.Reader) (map[string]*dto.MetricFamily, error) {
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(r)
	if err != nil && len(mfs) == 0 {
		return nil, fmt.Errorf("parse prometheus text: %w", err)
	}
	return mfs, nil
}

// gaugeForLabel returns the value of the first metric in mf whose label
// matches value, or 0 when mf is nil or no metric matches.
func gaugeForLabel(mf *dto.MetricFamily, label, value string) float64 {
	if mf == nil {
		return 0
	}
	for _, m := range mf.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == label && lp.GetValue() == value {
				return metricValue(m)
			}
		}
	}
	return 0
}

// sumFamily adds up all counter, gauge, or untyped values in a MetricFamily.
// Returns 0 if mf is nil.
func sumFamily(mf *dto.MetricFamily) float64 {
	if mf == nil {
		return 0
	}
	var total float64
	for _, m := range mf.GetMetric() {
		total += metricValue(m)
	}
	return total
}

func metricValue(m *dto.Metric) float64 {
	switch {
	case m.Counter != nil:
		return m.Counter.GetValue()
	case m.Gauge != nil:
		return m.Gauge.GetValue()
	case m.Untyped != nil:
		return m.Untyped.GetValue()
	default:
		return 0
	}
}

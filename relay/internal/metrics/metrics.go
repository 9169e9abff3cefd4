package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "room_relay"

// Metrics bundles the relay's instruments around one registry.
type Metrics struct {
	registry *prometheus.Registry

	// RoomMembers tracks connected sockets, labelled by room.
	RoomMembers *prometheus.GaugeVec

	// EventsTotal counts emitted events, labelled by opcode name.
	EventsTotal *prometheus.CounterVec

	// WSErrors counts WebSocket upgrade and write failures.
	WSErrors prometheus.Counter
}

// New creates the relay's metrics on a fresh registry. roomCount feeds the
// live-rooms gauge; it is read at scrape time.
func New(roomCount func() float64) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		RoomMembers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "room_members",
			Help:      "Members currently connected, by room.",
		}, []string{"room"}),
		EventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Events emitted through the relay, by opcode.",
		}, []string{"opcode"}),
		WSErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_errors_total",
			Help:      "WebSocket upgrade and write failures.",
		}),
	}

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rooms",
		Help:      "Live rooms on the relay.",
	}, roomCount)

	return m
}

// Handler serves the registry's exposition.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Package stats tracks the bridge's connection and handle counters and
// exposes them as a snapshot and as Prometheus collectors.
package stats

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wippyai/glide-bridge/resource"
)

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	TotalConnections int64
	TotalClients     int64
	LiveHandles      int64
}

// Stats holds the counters. It implements resource.Observer so a handle
// table can report leaks and reclaims directly.
//
// Metrics, all prefixed with "glide_bridge_":
//   - glide_bridge_connections - open transport connections
//   - glide_bridge_clients - clients attached to the transport
//   - glide_bridge_live_handles{kind} - leaked allocations not yet reclaimed
//   - glide_bridge_handles_created_total{kind} - allocations leaked
type Stats struct {
	registry *prometheus.Registry

	connectionsGauge prometheus.Gauge
	clientsGauge     prometheus.Gauge
	liveHandles      *prometheus.GaugeVec
	handlesCreated   *prometheus.CounterVec

	connections atomic.Int64
	clients     atomic.Int64
	live        atomic.Int64
}

var _ resource.Observer = (*Stats)(nil)

// New returns zeroed counters on a private registry.
func New() *Stats {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Stats{
		registry: reg,
		connectionsGauge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "glide_bridge_connections",
			Help: "Number of open transport connections",
		}),
		clientsGauge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "glide_bridge_clients",
			Help: "Number of clients attached to the transport",
		}),
		liveHandles: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "glide_bridge_live_handles",
			Help: "Allocations leaked to the host and not yet reclaimed",
		}, []string{"kind"}),
		handlesCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "glide_bridge_handles_created_total",
			Help: "Total allocations leaked to the host",
		}, []string{"kind"}),
	}
}

// ConnectionOpened records a new transport connection.
func (s *Stats) ConnectionOpened() {
	s.connections.Add(1)
	s.connectionsGauge.Inc()
}

// ConnectionClosed records a closed transport connection.
func (s *Stats) ConnectionClosed() {
	s.connections.Add(-1)
	s.connectionsGauge.Dec()
}

// ClientAttached records a client joining the transport.
func (s *Stats) ClientAttached() {
	s.clients.Add(1)
	s.clientsGauge.Inc()
}

// ClientDetached records a client leaving the transport.
func (s *Stats) ClientDetached() {
	s.clients.Add(-1)
	s.clientsGauge.Dec()
}

// OnResourceEvent implements resource.Observer.
func (s *Stats) OnResourceEvent(e resource.Event) {
	kind := e.Kind.String()
	switch e.Type {
	case resource.EventCreated:
		s.live.Add(1)
		s.liveHandles.WithLabelValues(kind).Inc()
		s.handlesCreated.WithLabelValues(kind).Inc()
	case resource.EventRedeemed, resource.EventDropped:
		s.live.Add(-1)
		s.liveHandles.WithLabelValues(kind).Dec()
	}
}

// Snapshot returns the current counters.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		TotalConnections: s.connections.Load(),
		TotalClients:     s.clients.Load(),
		LiveHandles:      s.live.Load(),
	}
}

// Registry returns the registry holding the collectors.
func (s *Stats) Registry() *prometheus.Registry {
	return s.registry
}

// Handler serves the collectors in the Prometheus exposition format.
func (s *Stats) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})
}

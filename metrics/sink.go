// Package metrics adapts the pipeline's upward-facing events onto Prometheus
// counters, for runtimes that want observability beyond the log-level
// predicate the core itself consumes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Sink implements pipeline.EventSink by incrementing Prometheus counters.
// It is optional: pipeline.NopEventSink is the zero-dependency choice for a
// runtime that doesn't export metrics.
type Sink struct {
	established *prometheus.CounterVec
	refresh     *prometheus.CounterVec
	installed   *prometheus.CounterVec
}

// NewSink registers its counters against reg and returns a ready Sink. Passing
// prometheus.NewRegistry() keeps the metrics isolated from the global
// registry, which test suites and embedders both want.
func NewSink(reg prometheus.Registerer) *Sink {
	s := &Sink{
		established: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relaycore",
			Subsystem: "peer",
			Name:      "established_total",
			Help:      "Count of peers whose first session was installed.",
		}, []string{"peer"}),
		refresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relaycore",
			Subsystem: "peer",
			Name:      "refresh_wanted_total",
			Help:      "Count of decrypted inbound packets seen while a peer's session was past its refresh threshold.",
		}, []string{"peer"}),
		installed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relaycore",
			Subsystem: "peer",
			Name:      "session_installed_total",
			Help:      "Count of session rotations driven by the handshake subsystem.",
		}, []string{"peer"}),
	}
	reg.MustRegister(s.established, s.refresh, s.installed)
	return s
}

func (s *Sink) PeerEstablished(peerID string)      { s.established.WithLabelValues(peerID).Inc() }
func (s *Sink) PeerRefreshWanted(peerID string)    { s.refresh.WithLabelValues(peerID).Inc() }
func (s *Sink) PeerSessionInstalled(peerID string) { s.installed.WithLabelValues(peerID).Inc() }

// DropCounter exposes a peer's drop count as a Prometheus gauge function
// collector, since the count is owned and incremented by package peer rather
// than by this package.
func DropCounter(peerID string, read func() uint64) prometheus.Collector {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   "relaycore",
		Subsystem:   "peer",
		Name:        "decrypt_drops_total",
		Help:        "Packets dropped by decrypt across current and previous session.",
		ConstLabels: prometheus.Labels{"peer": peerID},
	}, func() float64 { return float64(read()) })
}

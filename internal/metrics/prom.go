package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "zbridge_build_info",
			Help:        "Build information",
			ConstLabels: prometheus.Labels{"component": "bridge"},
		},
		[]string{"date", "sha", "version"},
	)

	dispatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zbridge_dispatch_total",
			Help: "Number of dispatched bridge actions",
		},
		[]string{"method", "outcome"},
	)

	streamConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "zbridge_stream_connections",
			Help: "Open streaming connections",
		},
	)

	streamMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zbridge_stream_messages_total",
			Help: "Messages pushed on streaming connections",
		},
		[]string{"outcome"},
	)
)

// Register adds all collectors to the given registerer.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(buildInfo, dispatches, streamConnections, streamMessages)
}

// SetBuildInfo records build metadata on the build_info gauge.
func SetBuildInfo(version, sha, date string) {
	buildInfo.WithLabelValues(date, sha, version).Set(1)
}

// RecordDispatch counts one dispatched action with its outcome
// (ok, error, unsupported, invalid_params).
func RecordDispatch(method, outcome string) {
	dispatches.WithLabelValues(method, outcome).Inc()
}

// StreamOpened and StreamClosed track the open-connection gauge.
func StreamOpened() { streamConnections.Inc() }

// StreamClosed decrements the open-connection gauge.
func StreamClosed() { streamConnections.Dec() }

// RecordStreamMessage counts one pushed message (sent or dropped).
func RecordStreamMessage(outcome string) {
	streamMessages.WithLabelValues(outcome).Inc()
}

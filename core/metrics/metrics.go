// Package metrics declares the Prometheus collectors exposed on the
// liveness server's /metrics endpoint.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	CommandCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexon_commands_total",
			Help: "Count of processed commands",
		},
		[]string{"command", "status"},
	)
	CommandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nexon_command_duration_seconds",
			Help:    "Time taken to process command",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"command"},
	)
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "nexon_active_sessions",
			Help: "Current number of open post composition sessions",
		},
	)
	PublishCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexon_publishes_total",
			Help: "Count of publish attempts per destination",
		},
		[]string{"destination", "status"},
	)
	MessagesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexon_messages_sent_total",
			Help: "Count of sent messages",
		},
		[]string{"type"}, // text, embed, reaction
	)
	EventCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexon_gateway_events_total",
			Help: "Count of inbound gateway events by kind",
		},
		[]string{"kind"},
	)
)

func Init() {
	prometheus.MustRegister(
		CommandCounter,
		CommandDuration,
		ActiveSessions,
		PublishCounter,
		MessagesSent,
		EventCounter,
	)
}

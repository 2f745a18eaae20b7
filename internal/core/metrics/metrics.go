package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the Prometheus instruments for the service. A single
// instance is created in main and passed to the components that record
// observations.
type Collector struct {
	ExternalCommands *prometheus.CounterVec
	CommandDuration  *prometheus.HistogramVec
	WebSocketClients prometheus.Gauge
	BrightnessLevel  *prometheus.GaugeVec
}

// NewCollector creates and registers the service metrics under the given
// prefix.
func NewCollector(prefix string) *Collector {
	if prefix == "" {
		prefix = "brightpanel"
	}

	return &Collector{
		ExternalCommands: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_external_commands_total",
				Help: "Total number of external shell invocations",
			},
			[]string{"operation", "outcome"},
		),
		CommandDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_external_command_duration_seconds",
				Help:    "Duration of external shell invocations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		WebSocketClients: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: prefix + "_websocket_clients",
				Help: "Number of connected panel clients",
			},
		),
		BrightnessLevel: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: prefix + "_brightness_level",
				Help: "Last brightness level written per display",
			},
			[]string{"display"},
		),
	}
}

// ObserveCommand records one external invocation.
func (c *Collector) ObserveCommand(operation string, duration time.Duration, err error) {
	if c == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	c.ExternalCommands.WithLabelValues(operation, outcome).Inc()
	c.CommandDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

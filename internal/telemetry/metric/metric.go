// Package metric provides Prometheus metrics for minikv.
//
// It exposes connection counts, per-command rates and latencies, and
// the current key count in Prometheus format for scraping.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all application metrics behind a dedicated
// Prometheus registry so tests can create isolated instances.
type Registry struct {
	ConnectionsActive prometheus.Gauge
	ConnectionsTotal  prometheus.Counter

	// CommandsTotal is partitioned by command name and outcome
	// (ok | error).
	CommandsTotal *prometheus.CounterVec

	// CommandDuration is incremented in the hot path by the command
	// dispatch loop.
	CommandDuration *prometheus.HistogramVec

	reg *prometheus.Registry
}

// NewRegistry creates a metrics registry. keyCount, when non-nil, is
// sampled on every scrape to report the current size of the store.
func NewRegistry(keyCount func() float64) *Registry {
	r := &Registry{
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "minikv",
			Name:      "connections_active",
			Help:      "Number of currently open client connections.",
		}),
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "minikv",
			Name:      "connections_total",
			Help:      "Total number of accepted client connections.",
		}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "minikv",
			Name:      "commands_total",
			Help:      "Total number of commands processed, partitioned by command name and outcome.",
		}, []string{"cmd", "status"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "minikv",
			Name:      "command_duration_seconds",
			Help:      "Command execution latency in seconds, partitioned by command name.",
			Buckets:   []float64{.000001, .000005, .00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"cmd"}),
		reg: prometheus.NewRegistry(),
	}

	r.reg.MustRegister(
		r.ConnectionsActive,
		r.ConnectionsTotal,
		r.CommandsTotal,
		r.CommandDuration,
	)

	if keyCount != nil {
		r.reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "minikv",
			Name:      "keys",
			Help:      "Number of entries in the store, including not-yet-reclaimed expired entries.",
		}, keyCount))
	}

	return r
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

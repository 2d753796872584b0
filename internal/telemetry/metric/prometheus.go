package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "minikv"

// Command status label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Registry holds all application metrics.
// A nil *Registry is valid and records nothing.
type Registry struct {
	reg *prometheus.Registry

	ConnectionsTotal    prometheus.Counter
	ConnectionsRejected prometheus.Counter
	ConnectionsActive   prometheus.Gauge

	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with the server metrics and the Go
// runtime and process collectors registered.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "connections_total",
			Help:      "Total accepted client connections",
		}),
		ConnectionsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "connections_rejected_total",
			Help:      "Connections refused because no client slot was free",
		}),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "connections_active",
			Help:      "Currently open client connections",
		}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "commands_total",
			Help:      "Commands processed, by command and status",
		}, []string{"command", "status"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "command_duration_seconds",
			Help:      "Command processing latency",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"command"}),
	}

	r.reg.MustRegister(
		r.ConnectionsTotal,
		r.ConnectionsRejected,
		r.ConnectionsActive,
		r.CommandsTotal,
		r.CommandDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Register adds an extra collector, such as the one from NewCollector.
func (r *Registry) Register(c prometheus.Collector) error {
	return r.reg.Register(c)
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// ConnOpened records an accepted connection.
func (r *Registry) ConnOpened() {
	if r == nil {
		return
	}
	r.ConnectionsTotal.Inc()
	r.ConnectionsActive.Inc()
}

// ConnClosed records a closed connection.
func (r *Registry) ConnClosed() {
	if r == nil {
		return
	}
	r.ConnectionsActive.Dec()
}

// ConnRejected records a connection refused for capacity.
func (r *Registry) ConnRejected() {
	if r == nil {
		return
	}
	r.ConnectionsRejected.Inc()
}

// ObserveCommand records one processed command.
func (r *Registry) ObserveCommand(command, status string, d time.Duration) {
	if r == nil {
		return
	}
	r.CommandsTotal.WithLabelValues(command, status).Inc()
	r.CommandDuration.WithLabelValues(command).Observe(d.Seconds())
}

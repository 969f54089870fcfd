package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector tracks the client's outgoing traffic against the backend and a
// few appointment-lifecycle outcomes. Registered on a private registry so
// that two clients in one process do not collide.
type Collector struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	RendezVousScheduled  prometheus.Counter
	RendezVousCancelled  prometheus.Counter
	CreneauxRefused      prometheus.Counter
	AvailabilityConflict prometheus.Counter
}

func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http_client",
			Name:      "requests_total",
			Help:      "Outgoing API requests by method, route, and status code.",
		}, []string{"method", "route", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http_client",
			Name:      "request_duration_seconds",
			Help:      "Outgoing API request latency distribution.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "route"}),

		InFlightGauge: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http_client",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight outgoing requests.",
		}),

		RendezVousScheduled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rdv",
			Name:      "scheduled_total",
			Help:      "Appointments successfully created.",
		}),

		RendezVousCancelled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rdv",
			Name:      "cancelled_total",
			Help:      "Appointments cancelled through this client.",
		}),

		CreneauxRefused: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rdv",
			Name:      "slots_refused_total",
			Help:      "Schedule attempts rejected by the availability pre-check.",
		}),

		AvailabilityConflict: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rdv",
			Name:      "create_conflicts_total",
			Help:      "Creates rejected by the backend after a positive pre-check.",
		}),
	}
}

// Handler exposes the collector's registry, for embedders that want to
// scrape a long-running dashboard process.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Package metrics defines the Prometheus instrumentation for the service.
// All metrics are incremented by the HTTP delivery layer; the store itself
// exposes no telemetry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles every collector the service exposes. Collectors are
// registered against the given registerer, so tests can use an isolated
// registry.
type Metrics struct {
	URLsCreated        prometheus.Counter
	CustomCodeURLs     prometheus.Counter
	URLsAccessed       *prometheus.CounterVec
	URLsNotFound       prometheus.Counter
	URLsDeleted        prometheus.Counter
	RedirectDuration   prometheus.Histogram
	CreationDuration   prometheus.Histogram
	TotalURLs          prometheus.Gauge
	HTTPRequestsTotal  *prometheus.CounterVec
	HTTPRequestSeconds *prometheus.HistogramVec
}

// New creates and registers the service metrics.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		URLsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "url_shortener_urls_created_total",
			Help: "Total number of shortened URLs created.",
		}),
		CustomCodeURLs: factory.NewCounter(prometheus.CounterOpts{
			Name: "url_shortener_custom_code_urls_total",
			Help: "Total number of URLs created with custom codes.",
		}),
		URLsAccessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "url_shortener_urls_accessed_total",
			Help: "Total number of times shortened URLs were accessed.",
		}, []string{"short_code"}),
		URLsNotFound: factory.NewCounter(prometheus.CounterOpts{
			Name: "url_shortener_urls_not_found_total",
			Help: "Total number of times a non-existent URL was requested.",
		}),
		URLsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "url_shortener_urls_deleted_total",
			Help: "Total number of URLs deleted.",
		}),
		RedirectDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "url_shortener_redirect_duration_seconds",
			Help:    "Time spent processing redirect requests.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
		CreationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "url_shortener_creation_duration_seconds",
			Help:    "Time spent creating shortened URLs.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
		TotalURLs: factory.NewGauge(prometheus.GaugeOpts{
			Name: "url_shortener_total_urls",
			Help: "Current number of URLs in the store.",
		}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "url_shortener_http_requests_total",
			Help: "Total HTTP requests.",
		}, []string{"method", "route", "status"}),
		HTTPRequestSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "url_shortener_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"method", "route"}),
	}
}

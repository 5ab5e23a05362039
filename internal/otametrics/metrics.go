package otametrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records what the upload service does.
type Metrics interface {
	ObserveUpload(result string, sizeBytes int)
	ObserveRequest(method, route, status string, durationSeconds float64)
}

// Noop implements Metrics without emitting anything.
type Noop struct{}

func (Noop) ObserveUpload(string, int)                      {}
func (Noop) ObserveRequest(string, string, string, float64) {}

const ResultSuccess = "success"

// Prom implements Metrics backed by Prometheus collectors.
type Prom struct {
	uploads    *prometheus.CounterVec
	uploadSize prometheus.Histogram
	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// NewProm registers its collectors with reg, or with
// prometheus.DefaultRegisterer when reg is nil.
func NewProm(namespace string, reg prometheus.Registerer) *Prom {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	p := &Prom{
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Uploads by result, either success or the kind of failure",
		}, []string{"result"}),
		uploadSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_size_bytes",
			Help:      "Size of uploaded archives",
			Buckets:   prometheus.ExponentialBuckets(1<<20, 2, 10),
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method/route/status",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method/route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(p.uploads, p.uploadSize, p.requests, p.latency)

	return p
}

func (p *Prom) ObserveUpload(result string, sizeBytes int) {
	p.uploads.WithLabelValues(result).Inc()
	p.uploadSize.Observe(float64(sizeBytes))
}

func (p *Prom) ObserveRequest(method, route, status string, durationSeconds float64) {
	p.requests.WithLabelValues(method, route, status).Inc()
	p.latency.WithLabelValues(method, route).Observe(durationSeconds)
}

// Handler returns an HTTP handler for /metrics that serves gatherer, or
// prometheus.DefaultGatherer when gatherer is nil.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		return promhttp.Handler()
	}

	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

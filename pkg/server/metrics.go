package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	generationsTotal   *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	activeGenerations  prometheus.Gauge
	videoBytes         prometheus.Counter
	requestsTotal      *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors, plus the Go runtime and
// process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		generationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vidgen_generations_total",
				Help: "Video generations by backend and outcome category.",
			},
			[]string{"backend", "result"},
		),
		generationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vidgen_generation_duration_seconds",
				Help:    "Wall time of video generations.",
				Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1200},
			},
			[]string{"backend"},
		),
		activeGenerations: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vidgen_active_generations",
			Help: "Generations currently in flight.",
		}),
		videoBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vidgen_video_bytes_total",
			Help: "Bytes of video written to the library.",
		}),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vidgen_http_requests_total",
				Help: "HTTP API requests by route and status code.",
			},
			[]string{"route", "code"},
		),
	}
	m.registry.MustRegister(
		m.generationsTotal,
		m.generationDuration,
		m.activeGenerations,
		m.videoBytes,
		m.requestsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveGeneration records a finished generation. result is "ok" or an
// error category.
func (m *Metrics) ObserveGeneration(backend, result string, d time.Duration, bytes int64) {
	if backend == "" {
		backend = "none"
	}
	m.generationsTotal.WithLabelValues(backend, result).Inc()
	if result == "ok" {
		m.generationDuration.WithLabelValues(backend).Observe(d.Seconds())
		m.videoBytes.Add(float64(bytes))
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

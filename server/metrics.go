package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "gonewton"

// Metrics holds the service's Prometheus collectors on a private registry, so
// several servers (and tests) can coexist in one process.
type Metrics struct {
	Registry *prometheus.Registry

	// RequestsTotal counts HTTP requests.
	// Labels: route, method, status
	RequestsTotal *prometheus.CounterVec

	// RequestDuration measures handler latency.
	// Labels: route
	RequestDuration *prometheus.HistogramVec

	// CalculationsTotal counts calculate outcomes.
	// Labels: outcome (converged, derivative_too_small, max_iterations_exceeded, invalid_input)
	CalculationsTotal *prometheus.CounterVec

	// Iterations observes the trace length of converged calculations.
	Iterations prometheus.Histogram

	// RateLimitedTotal counts requests rejected by the rate limiter.
	RateLimitedTotal prometheus.Counter
}

// NewMetrics creates and registers every collector.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"route"},
		),
		CalculationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "calculations_total",
				Help:      "Total calculate requests by outcome",
			},
			[]string{"outcome"},
		),
		Iterations: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "iterations",
				Help:      "Newton-Raphson steps taken by converged calculations",
				Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 50, 100},
			},
		),
		RateLimitedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "rate_limited_total",
				Help:      "Requests rejected by the rate limiter",
			},
		),
	}
	m.Registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.CalculationsTotal,
		m.Iterations,
		m.RateLimitedTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

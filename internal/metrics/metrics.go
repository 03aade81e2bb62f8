// Package metrics provides Prometheus metrics for the summary service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	SheetWritesTotal   *prometheus.CounterVec
	GlidePushesTotal   *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "summary_requests_total",
				Help: "Total summary requests by outcome.",
			},
			[]string{"outcome"},
		),
		GenerationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "summary_generation_duration_seconds",
				Help:    "Gemini generation call duration.",
				Buckets: prometheus.DefBuckets,
			},
		),
		SheetWritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "summary_sheet_writes_total",
				Help: "Sheet append attempts by result.",
			},
			[]string{"result"},
		),
		GlidePushesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "summary_glide_pushes_total",
				Help: "Glide propagation attempts by result.",
			},
			[]string{"result"},
		),
		registry: reg,
	}

	reg.MustRegister(m.RequestsTotal)
	reg.MustRegister(m.GenerationDuration)
	reg.MustRegister(m.SheetWritesTotal)
	reg.MustRegister(m.GlidePushesTotal)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest increments the request counter.
func (m *Metrics) RecordRequest(outcome string) {
	m.RequestsTotal.WithLabelValues(outcome).Inc()
}

// ObserveGeneration records a generation call duration.
func (m *Metrics) ObserveGeneration(seconds float64) {
	m.GenerationDuration.Observe(seconds)
}

// RecordSheetWrite increments the sheet write counter.
func (m *Metrics) RecordSheetWrite(result string) {
	m.SheetWritesTotal.WithLabelValues(result).Inc()
}

// RecordGlidePush increments the Glide push counter.
func (m *Metrics) RecordGlidePush(result string) {
	m.GlidePushesTotal.WithLabelValues(result).Inc()
}

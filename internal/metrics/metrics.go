// Package metrics holds Prometheus instruments that are used across the
// service.  All collectors are registered with the global registry, so
// mounting promhttp.Handler() on /metrics is enough to expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ConfigLoadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "config_load_total",
			Help: "Cumulative number of configuration record loads.",
		}, []string{"record"})

	ConfigLoadErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "config_load_errors_total",
			Help: "Cumulative number of configuration record loads that failed.",
		}, []string{"record"})

	InferenceRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inference_requests_total",
			Help: "Generate calls to the generative-AI service, by outcome.",
		}, []string{"model", "outcome"})

	InferenceDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inference_request_duration_seconds",
			Help:    "Latency of Generate calls to the generative-AI service.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"model"})
)

func init() {
	prometheus.MustRegister(
		ConfigLoadTotal,
		ConfigLoadErrorsTotal,
		InferenceRequestsTotal,
		InferenceDuration,
	)
}

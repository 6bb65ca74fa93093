// Package metrics holds Prometheus instruments used across the service.
// All collectors are registered with the global registry, so mounting
// promhttp.Handler() on /metrics is enough to expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "petit_http_requests_total",
			Help: "HTTP requests served, by route pattern and status code.",
		}, []string{"route", "code"})

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "petit_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"})

	StatementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "petit_statements_total",
			Help: "Committed write statements, by table and kind.",
		}, []string{"table", "kind"})

	StoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "petit_store_errors_total",
			Help: "Store failures, by classified kind.",
		}, []string{"kind"})

	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "petit_uploads_total",
			Help: "Stored uploads, by backend.",
		}, []string{"backend"})

	DBUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "petit_db_up",
			Help: "1 when the last database ping succeeded.",
		})

	DBConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "petit_db_connections",
			Help: "Pool connections at the last sample, by state.",
		}, []string{"state"})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		StatementsTotal,
		StoreErrorsTotal,
		UploadsTotal,
		DBUp,
		DBConnections,
	)
}

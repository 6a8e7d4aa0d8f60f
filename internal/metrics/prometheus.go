// Package metrics holds the Prometheus collectors for the sync pipeline,
// the provider client and the read API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Provider calls
	UpstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soccerscore_upstream_calls_total",
			Help: "Total number of sports-data provider calls",
		},
		[]string{"endpoint", "status"},
	)

	UpstreamCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "soccerscore_upstream_call_duration_seconds",
			Help:    "Duration of provider calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Sync pipeline
	SyncStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "soccerscore_sync_stage_duration_seconds",
			Help:    "Duration of sync stages in seconds",
			Buckets: []float64{.1, .5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"stage", "status"},
	)

	DocumentsUpsertedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soccerscore_documents_upserted_total",
			Help: "Total number of documents upserted by the sync pipeline",
		},
		[]string{"collection"},
	)

	LastSyncSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "soccerscore_last_sync_success_timestamp_seconds",
			Help: "Unix time of the last fully successful sync run",
		},
	)

	// Read API
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soccerscore_http_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"route", "status"},
	)

	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "soccerscore_cache_hits_total",
			Help: "Total number of response cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "soccerscore_cache_misses_total",
			Help: "Total number of response cache misses",
		},
	)
)

// StatusLabel maps an error to the status label used on counters.
func StatusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

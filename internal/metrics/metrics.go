// Package metrics provides Prometheus metrics for the storage explorer.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Gateway request metrics
	gatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wzx_gateway_requests_total",
			Help: "Total number of gateway requests",
		},
		[]string{"endpoint", "status"},
	)

	gatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wzx_gateway_request_duration_seconds",
			Help:    "Gateway request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Upload metrics
	uploadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wzx_upload_bytes_total",
			Help: "Total bytes uploaded",
		},
	)

	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wzx_uploads_total",
			Help: "Total number of file uploads",
		},
		[]string{"status"},
	)

	// Explorer metrics
	listingLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wzx_listing_loads_total",
			Help: "Total folder listing loads",
		},
		[]string{"kind"}, // reset | more
	)

	searchQueriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wzx_search_queries_total",
			Help: "Total search queries issued",
		},
	)

	searchStaleDropsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wzx_search_stale_drops_total",
			Help: "Search responses dropped because a newer query superseded them",
		},
	)

	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wzx_mutations_total",
			Help: "Total mutation operations",
		},
		[]string{"operation", "status"},
	)

	treeCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wzx_tree_cache_folders",
			Help: "Number of folders with cached children",
		},
	)

	quotaRefreshesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wzx_quota_refreshes_total",
			Help: "Total quota snapshot refreshes",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordGatewayRequest records a gateway request outcome.
func RecordGatewayRequest(endpoint, status string, duration time.Duration) {
	gatewayRequestsTotal.WithLabelValues(endpoint, status).Inc()
	gatewayRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordUpload records a file upload. Bytes count only toward the byte
// counter when the upload succeeded.
func RecordUpload(bytes int64, success bool) {
	status := "success"
	if success {
		uploadBytesTotal.Add(float64(bytes))
	} else {
		status = "error"
	}
	uploadsTotal.WithLabelValues(status).Inc()
}

// RecordListingLoad records a folder listing load.
func RecordListingLoad(reset bool) {
	kind := "more"
	if reset {
		kind = "reset"
	}
	listingLoadsTotal.WithLabelValues(kind).Inc()
}

// RecordSearchQuery records an issued search query.
func RecordSearchQuery() {
	searchQueriesTotal.Inc()
}

// RecordSearchStaleDrop records a discarded superseded search response.
func RecordSearchStaleDrop() {
	searchStaleDropsTotal.Inc()
}

// RecordMutation records a mutation operation outcome.
func RecordMutation(operation string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	mutationsTotal.WithLabelValues(operation, status).Inc()
}

// SetTreeCacheSize sets the number of cached folder listings.
func SetTreeCacheSize(count int) {
	treeCacheSize.Set(float64(count))
}

// RecordQuotaRefresh records a quota snapshot refresh.
func RecordQuotaRefresh() {
	quotaRefreshesTotal.Inc()
}

// Package metrics exposes Prometheus instrumentation for the API, the
// recommendation engine, the response cache and the offline build.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolution outcomes.
const (
	ResolutionExact     = "exact"
	ResolutionCorrected = "corrected"
	ResolutionRejected  = "rejected"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movierec_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "movierec_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Engine Metrics
	TitleResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_title_resolutions_total",
			Help: "Title resolutions by outcome (exact, corrected, rejected)",
		},
		[]string{"outcome"},
	)

	FuzzyMatchScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "movierec_fuzzy_match_score",
			Help:    "Best fuzzy match score of non-exact resolutions",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	RecommendationsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "movierec_recommendations_returned",
			Help:    "Number of recommendations returned per request",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_cache_hits_total",
			Help: "Response cache hits by operation",
		},
		[]string{"operation"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_cache_misses_total",
			Help: "Response cache misses by operation",
		},
		[]string{"operation"},
	)

	// Artifact Metrics
	CatalogItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "movierec_catalog_items",
			Help: "Number of items in the loaded catalog",
		},
	)

	ArtifactLoadDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "movierec_artifact_load_duration_seconds",
			Help: "Time taken to load the artifact set at startup",
		},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordResolution records a title resolution outcome. score is ignored for exact hits.
func RecordResolution(outcome string, score float64) {
	TitleResolutions.WithLabelValues(outcome).Inc()
	if outcome != ResolutionExact {
		FuzzyMatchScore.Observe(score)
	}
}

// RecordCache records a response cache lookup.
func RecordCache(operation string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(operation).Inc()
	} else {
		CacheMisses.WithLabelValues(operation).Inc()
	}
}

// RecordArtifactLoad records the loaded catalog size and load time.
func RecordArtifactLoad(items int, duration time.Duration) {
	CatalogItems.Set(float64(items))
	ArtifactLoadDuration.Set(duration.Seconds())
}

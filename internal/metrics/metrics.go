// Package metrics exposes Prometheus instrumentation for the recommender.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookshelf_recommendation_requests_total",
			Help: "Recommendation requests by aggregation and outcome",
		},
		[]string{"aggregation", "status"},
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookshelf_recommendation_duration_seconds",
			Help:    "Time spent scoring candidates in the engine",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
		[]string{"aggregation"},
	)

	RecommendationResultSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookshelf_recommendation_result_size",
			Help:    "Number of books returned per recommendation",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookshelf_cache_hits_total",
			Help: "Recommendation cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookshelf_cache_misses_total",
			Help: "Recommendation cache misses",
		},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookshelf_cache_errors_total",
			Help: "Recommendation cache failures by operation",
		},
		[]string{"operation"},
	)

	CatalogBooks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookshelf_catalog_books",
			Help: "Number of books in the loaded catalog",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookshelf_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookshelf_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)
)

func RecordRecommendation(aggregation, status string, d time.Duration, size int) {
	RecommendationRequests.WithLabelValues(aggregation, status).Inc()
	if status == "success" {
		RecommendationDuration.WithLabelValues(aggregation).Observe(d.Seconds())
		RecommendationResultSize.Observe(float64(size))
	}
}

func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

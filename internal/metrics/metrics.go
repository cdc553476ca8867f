// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

// Package metrics provides Prometheus instrumentation for Cinegraph:
// SPARQL query performance per source, cache efficiency, connectivity probe
// results, circuit breaker state, enrichment fan-out latency, and API
// request metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SPARQL / store metrics

	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_query_duration_seconds",
			Help:    "Duration of movie queries per store",
			Buckets: []float64{0.001, 0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"store", "language"},
	)

	StoreQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_query_errors_total",
			Help: "Total number of store query failures degraded to empty results",
		},
		[]string{"store", "error_type"},
	)

	StoreRowsReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_rows_returned",
			Help:    "Binding rows returned per store query",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"store"},
	)

	OntologyTriples = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ontology_triples_loaded",
			Help: "Number of triples loaded into the local ontology store",
		},
	)

	ReducedMovies = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reduced_store_movies",
			Help: "Number of movies persisted in the reduced offline store",
		},
		[]string{"language"},
	)

	ReducedIngestPages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reduced_ingest_pages_total",
			Help: "Paginated ingest queries executed against the remote endpoint",
		},
		[]string{"language"},
	)

	// Normalizer metrics

	NormalizerRowErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "normalizer_row_errors_total",
			Help: "Binding rows with malformed fields degraded to placeholders",
		},
	)

	// Connectivity probe metrics

	ProbeResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "connectivity_probe_results_total",
			Help: "Connectivity probe outcomes",
		},
		[]string{"result"}, // "online" or "offline"
	)

	ProbeOnline = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "connectivity_online",
			Help: "Last connectivity probe result (1 = online, 0 = offline)",
		},
	)

	// Circuit breaker metrics

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0 = closed, 1 = half-open, 2 = open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Circuit breaker request outcomes",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	// Cache metrics

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	// Enrichment metrics

	EnrichmentDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "enrichment_batch_duration_seconds",
			Help:    "Duration of poster enrichment fan-out batches",
			Buckets: prometheus.DefBuckets,
		},
	)

	EnrichmentLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_lookups_total",
			Help: "Poster lookup outcomes",
		},
		[]string{"result"}, // "hit", "miss", "error", "cached"
	)

	// Intent metrics

	IntentExtractions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intent_extractions_total",
			Help: "Intent extraction outcomes per language",
		},
		[]string{"language", "outcome"}, // "understood", "not_understood"
	)

	// API endpoint metrics

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)
)

// RecordStoreQuery records one store query with its duration and row count.
func RecordStoreQuery(store, language string, duration time.Duration, rows int) {
	StoreQueryDuration.WithLabelValues(store, language).Observe(duration.Seconds())
	StoreRowsReturned.WithLabelValues(store).Observe(float64(rows))
}

// RecordStoreError records a degraded store query.
func RecordStoreError(store, errorType string) {
	StoreQueryErrors.WithLabelValues(store, errorType).Inc()
}

// RecordProbe records a connectivity probe outcome.
func RecordProbe(online bool) {
	if online {
		ProbeResults.WithLabelValues("online").Inc()
		ProbeOnline.Set(1)
		return
	}
	ProbeResults.WithLabelValues("offline").Inc()
	ProbeOnline.Set(0)
}

// RecordCacheAccess records a cache hit or miss for the named cache.
func RecordCacheAccess(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
		return
	}
	CacheMisses.WithLabelValues(cache).Inc()
}

// RecordAPIRequest records an API request with method, endpoint, status and duration.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(active bool) {
	if active {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}

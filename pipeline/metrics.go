package pipeline

import "github.com/prometheus/client_golang/prometheus"

var (
	parseOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "velox",
			Subsystem: "pipeline",
			Name:      "parse_ops_total",
			Help:      "The total number of documents processed, by strategy.",
		},
		[]string{"strategy"}, // single, chunked
	)
	chunkOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "velox",
			Subsystem: "pipeline",
			Name:      "chunk_ops_total",
			Help:      "The total number of chunk attempts, by outcome.",
		},
		[]string{"outcome"}, // ok, empty, timeout
	)
	itemsExtracted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "velox",
			Subsystem: "pipeline",
			Name:      "items_extracted_total",
			Help:      "The total number of layout items extracted from the native engine.",
		},
	)
	itemsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "velox",
			Subsystem: "pipeline",
			Name:      "items_dropped_total",
			Help:      "The total number of items dropped by validation.",
		},
	)
	timeoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "velox",
			Subsystem: "pipeline",
			Name:      "timeouts_total",
			Help:      "The total number of abandoned native calls, by unit.",
		},
		[]string{"unit"}, // document, chunk
	)
	fallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "velox",
			Subsystem: "pipeline",
			Name:      "synthesis_fallbacks_total",
			Help:      "The total number of documents served by the synthesized fallback.",
		},
	)
	processDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "velox",
			Subsystem: "pipeline",
			Name:      "process_duration_seconds",
			Help:      "Time taken to process a document.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"strategy"},
	)
	cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "velox",
			Subsystem: "pipeline",
			Name:      "cache_hits_total",
			Help:      "Total number of result cache hits.",
		},
		[]string{"type"},
	)
	cacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "velox",
			Subsystem: "pipeline",
			Name:      "cache_misses_total",
			Help:      "Total number of result cache misses.",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(parseOps)
	prometheus.MustRegister(chunkOps)
	prometheus.MustRegister(itemsExtracted)
	prometheus.MustRegister(itemsDropped)
	prometheus.MustRegister(timeoutsTotal)
	prometheus.MustRegister(fallbacksTotal)
	prometheus.MustRegister(processDuration)
	prometheus.MustRegister(cacheHits)
	prometheus.MustRegister(cacheMisses)
}

// RecordCacheHit increments the result cache hit counter.
func RecordCacheHit(cacheType string) {
	cacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss increments the result cache miss counter.
func RecordCacheMiss(cacheType string) {
	cacheMisses.WithLabelValues(cacheType).Inc()
}

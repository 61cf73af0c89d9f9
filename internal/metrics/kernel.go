package metrics

import "github.com/prometheus/client_golang/prometheus"

// Kernel pipeline Prometheus metrics.
var (
	SimilarityCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snipgram",
			Name:      "similarity_cache_total",
			Help:      "Per-worker similarity cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	SimilarityStoreTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snipgram",
			Name:      "similarity_store_total",
			Help:      "Remote similarity store lookups",
		},
		[]string{"result"}, // "hit" / "miss" / "error"
	)

	GramPairsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snipgram",
			Name:      "gram_pairs_total",
			Help:      "Kernel evaluations written into Gram matrices",
		},
		[]string{"shape"}, // "symmetric" / "rectangular"
	)

	GramBuildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "snipgram",
			Name:      "gram_build_duration_seconds",
			Help:      "Gram matrix build duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		},
		[]string{"shape", "status"},
	)

	GramWorkers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "snipgram",
			Name:      "gram_workers",
			Help:      "Worker goroutines used by the last Gram build",
		},
	)

	EnrichTopicTokensTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "snipgram",
			Name:      "enrich_topic_tokens_total",
			Help:      "Replicated topic tokens appended to snippets",
		},
	)
)

var kernelMetricsRegistered bool

// RegisterKernelMetrics registers the pipeline metrics. Must be called once from main.
func RegisterKernelMetrics() {
	if kernelMetricsRegistered {
		return
	}
	prometheus.MustRegister(SimilarityCacheTotal)
	prometheus.MustRegister(SimilarityStoreTotal)
	prometheus.MustRegister(GramPairsTotal)
	prometheus.MustRegister(GramBuildDuration)
	prometheus.MustRegister(GramWorkers)
	prometheus.MustRegister(EnrichTopicTokensTotal)
	kernelMetricsRegistered = true
}

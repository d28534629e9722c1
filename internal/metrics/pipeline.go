package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline metrics for the question-answering flow and its external
// capabilities. Registered explicitly from main (no init()) so tests can
// import this package without polluting the default registry.
var (
	// QuestionsTotal counts answered questions by outcome: generated,
	// fallback, error.
	QuestionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "virtualta",
			Name:      "questions_total",
			Help:      "Answered questions by composition outcome",
		},
		[]string{"outcome"},
	)

	// RetrievalTotal counts retrieval passes by engine and status.
	RetrievalTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "virtualta",
			Name:      "retrieval_total",
			Help:      "Retrieval passes by engine (vector/keyword) and status",
		},
		[]string{"engine", "status"},
	)

	// EmbeddingRequestsTotal counts embedding API calls by status.
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "virtualta",
			Name:      "embedding_requests_total",
			Help:      "Embedding API requests by status",
		},
		[]string{"model", "status"},
	)

	// EmbeddingRequestDuration observes embedding API latency.
	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "virtualta",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding API request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"model"},
	)

	// EmbeddingCacheTotal counts embedding cache lookups ("hit"/"miss").
	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "virtualta",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache lookups by result",
		},
		[]string{"result"},
	)

	// GenerationRequestsTotal counts generation API calls by status:
	// success, quota, error.
	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "virtualta",
			Name:      "generation_requests_total",
			Help:      "Generation API requests by status",
		},
		[]string{"model", "status"},
	)
)

// RegisterPipelineMetrics registers pipeline metrics with the default registry.
func RegisterPipelineMetrics() {
	prometheus.MustRegister(
		QuestionsTotal,
		RetrievalTotal,
		EmbeddingRequestsTotal,
		EmbeddingRequestDuration,
		EmbeddingCacheTotal,
		GenerationRequestsTotal,
	)
}

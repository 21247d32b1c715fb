package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the full hybrid search request path (expansion through boosting)
	SearchLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "search_request_latency_seconds",
		Help:    "Latency of search requests by search type",
		Buckets: prometheus.DefBuckets,
	}, []string{"search_type"})

	// Total search requests served
	SearchRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "search_requests_total",
		Help: "Total number of search requests by search type",
	}, []string{"search_type"})

	// Retrieval failures by source (semantic / keyword)
	RetrievalFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "search_retrieval_failures_total",
		Help: "Retrieval source failures by source and reason",
	}, []string{"source", "reason"})

	// Requests answered without any retrieval source
	DegradedResponses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "search_degraded_responses_total",
		Help: "Search responses served with zero surviving retrieval sources",
	})
)

func Init() {
	prometheus.MustRegister(
		SearchLatency,
		SearchRequests,
		RetrievalFailures,
		DegradedResponses,
	)
}

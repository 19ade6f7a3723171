package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reftab_api_requests_total",
			Help: "Number of API requests",
		},
		[]string{"tenant", "method", "path", "status"},
	)
	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reftab_api_latency_seconds",
			Help:    "API latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	Items = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reftab_items_total",
			Help: "Number of reference items by table",
		},
		[]string{"table"},
	)
	StoreErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reftab_store_errors_total",
			Help: "Count of remote store errors",
		},
		[]string{"table", "op"},
	)
	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reftab_cache_hits_total",
			Help: "Item list cache hits",
		},
	)
	CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reftab_cache_misses_total",
			Help: "Item list cache misses",
		},
	)
	KeyInference = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reftab_key_inference_total",
			Help: "Primary key columns resolved by inference rather than configuration",
		},
		[]string{"table", "column"},
	)
)

func init() {
	prometheus.MustRegister(
		APIRequests,
		APILatency,
		Items,
		StoreErrors,
		CacheHits,
		CacheMisses,
		KeyInference,
	)
}

package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "prospector"

// Upstream Prometheus metrics.
var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of enrichment service requests",
		},
		[]string{"endpoint", "status"}, // status: HTTP code, or "error" for transport failures
	)

	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Enrichment service request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	UpstreamCreditsRemaining = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "upstream_credits_remaining",
			Help:      "Remaining enrichment service credits as last reported",
		},
	)

	EnrichCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrich_cache_total",
			Help:      "Enrichment cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var upstreamMetricsRegistered bool

// RegisterUpstreamMetrics registers the upstream metrics. Must be called once from main.
func RegisterUpstreamMetrics() {
	if upstreamMetricsRegistered {
		return
	}
	prometheus.MustRegister(UpstreamRequestsTotal)
	prometheus.MustRegister(UpstreamRequestDuration)
	prometheus.MustRegister(UpstreamCreditsRemaining)
	prometheus.MustRegister(EnrichCacheTotal)
	upstreamMetricsRegistered = true
}

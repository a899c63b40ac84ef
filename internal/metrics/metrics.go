package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "bank",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bank",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bank",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	transactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bank",
			Subsystem: "transactions",
			Name:      "total",
			Help:      "Transactions that reached a terminal status.",
		},
		[]string{"type", "status"},
	)

	settlementDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bank",
			Subsystem: "transactions",
			Name:      "settlement_duration_seconds",
			Help:      "Time spent applying balance changes.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"type"},
	)

	settlementQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "bank",
			Subsystem: "settlement",
			Name:      "queue_depth",
			Help:      "Transactions waiting in the settlement queue.",
		},
	)

	sweeperRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bank",
			Subsystem: "settlement",
			Name:      "sweeper_transactions_total",
			Help:      "Stale pending transactions handled by the sweeper.",
		},
		[]string{"action"},
	)

	rateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bank",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		transactions,
		settlementDuration,
		settlementQueueDepth,
		sweeperRuns,
		rateLimited,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one finished request. path should be the route
// template so label cardinality stays bounded.
func ObserveHTTP(method, path string, status int, duration time.Duration) {
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func IncInFlight() { httpInFlight.Inc() }
func DecInFlight() { httpInFlight.Dec() }

// RecordTransaction counts a transaction that reached a terminal status.
func RecordTransaction(txType, status string) {
	transactions.WithLabelValues(txType, status).Inc()
}

func RecordSettlement(txType string, duration time.Duration) {
	if duration <= 0 {
		duration = time.Millisecond
	}
	settlementDuration.WithLabelValues(txType).Observe(duration.Seconds())
}

func SetSettlementQueueDepth(n int64) {
	settlementQueueDepth.Set(float64(n))
}

func RecordSweep(action string, n int) {
	sweeperRuns.WithLabelValues(action).Add(float64(n))
}

func RecordRateLimited() {
	rateLimited.Inc()
}

// Package telemetry holds the Prometheus collectors shared by the service.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "zaloga"

var (
	// HTTPRequests counts served requests by method and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by method and status code.",
	}, []string{"method", "status"})

	// HTTPDuration observes request latency by method.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	// LedgerMutations counts accepted in-memory ledger mutations by table.
	LedgerMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_mutations_total",
		Help:      "Ledger mutations applied in memory, by table.",
	}, []string{"table"})

	// SyncFailures counts backing-store writes that failed after the
	// in-memory mutation had already been applied.
	SyncFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_failures_total",
		Help:      "Failed writes to the backing store, by table.",
	}, []string{"table"})

	// SyncBacklog reports how many mutations are waiting to be written to
	// the backing store.
	SyncBacklog = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sync_backlog",
		Help:      "Ledger mutations queued for the backing store.",
	})

	// Archives counts snapshot uploads by outcome.
	Archives = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "archives_total",
		Help:      "Snapshot archive uploads, by result.",
	}, []string{"result"})
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

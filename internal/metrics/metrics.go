// Package metrics exposes Prometheus instrumentation for the ledger.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ledgerComputeDuration tracks full ledger recomputations by view.
	ledgerComputeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "slotledger_compute_duration_seconds",
		Help:    "Ledger recomputation duration in seconds, including log reads",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
	}, []string{"view"})

	// ledgerRecords tracks the size of the log snapshot per recomputation.
	ledgerRecords = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "slotledger_compute_records",
		Help:    "Number of transaction records per ledger recomputation",
		Buckets: []float64{10, 100, 500, 1000, 5000, 10000, 50000},
	})

	// batchOperations counts batch manager operations by result.
	batchOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slotledger_batch_operations_total",
		Help: "Batch manager operations by operation and result",
	}, []string{"operation", "result"})

	// pairingsGenerated counts persisted pairings.
	pairingsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slotledger_pairings_generated_total",
		Help: "Total pairings persisted by pairing generation",
	})
)

// ObserveCompute records one ledger recomputation.
func ObserveCompute(view string, started time.Time, records int) {
	ledgerComputeDuration.WithLabelValues(view).Observe(time.Since(started).Seconds())
	ledgerRecords.Observe(float64(records))
}

// BatchOperation counts one batch operation. err == nil counts as "ok".
func BatchOperation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	batchOperations.WithLabelValues(operation, result).Inc()
}

// PairingsGenerated adds n generated pairings.
func PairingsGenerated(n int) {
	pairingsGenerated.Add(float64(n))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

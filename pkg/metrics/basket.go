package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BasketMetrics records the health of the basket write loop.
type BasketMetrics struct {
	opDuration        *prometheus.HistogramVec
	conflictRetries   *prometheus.CounterVec
	conflictExhausted *prometheus.CounterVec
	lookupFailures    *prometheus.CounterVec
}

// NewBasketMetrics registers the basket metrics on the provided registerer.
func NewBasketMetrics(reg prometheus.Registerer) *BasketMetrics {
	if reg == nil {
		return &BasketMetrics{}
	}
	opDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "basket_operation_duration_seconds",
		Help:    "Duration of basket service operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	conflictRetries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "basket_cas_conflicts_total",
		Help: "Write attempts retried because the stored basket revision moved.",
	}, []string{"op"})
	conflictExhausted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "basket_cas_exhausted_total",
		Help: "Operations that gave up after the full retry budget.",
	}, []string{"op"})
	lookupFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "basket_lookup_failures_total",
		Help: "Product lookups that failed while adding an item.",
	}, []string{"reason"})
	reg.MustRegister(opDuration, conflictRetries, conflictExhausted, lookupFailures)
	return &BasketMetrics{
		opDuration:        opDuration,
		conflictRetries:   conflictRetries,
		conflictExhausted: conflictExhausted,
		lookupFailures:    lookupFailures,
	}
}

// ObserveOperation records the duration for the named operation.
func (b *BasketMetrics) ObserveOperation(op string, duration time.Duration) {
	if b == nil || b.opDuration == nil {
		return
	}
	b.opDuration.WithLabelValues(normalizeLabel(op)).Observe(duration.Seconds())
}

// IncConflictRetry increments the conflict counter for the named operation.
func (b *BasketMetrics) IncConflictRetry(op string) {
	if b == nil || b.conflictRetries == nil {
		return
	}
	b.conflictRetries.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncConflictExhausted increments the budget-exhausted counter.
func (b *BasketMetrics) IncConflictExhausted(op string) {
	if b == nil || b.conflictExhausted == nil {
		return
	}
	b.conflictExhausted.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncLookupFailure increments the enrichment failure counter.
func (b *BasketMetrics) IncLookupFailure(reason string) {
	if b == nil || b.lookupFailures == nil {
		return
	}
	b.lookupFailures.WithLabelValues(normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

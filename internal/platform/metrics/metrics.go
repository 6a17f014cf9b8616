// Package metrics exposes ledger operation metrics to Prometheus.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
)

// Outcome labels.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics holds the ledger's collectors. It implements contracts.Observer.
type Metrics struct {
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	RelayPublished    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Mutating ledger operations by outcome",
		}, []string{"op", "outcome"}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledger_operation_duration_seconds",
			Help:    "Time to execute a mutating ledger operation",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		RelayPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_relay_published_total",
			Help: "Audit entries published by the relay",
		}, []string{"sink"}),
	}
	reg.MustRegister(m.Operations, m.OperationDuration, m.RelayPublished)
	return m
}

// ObserveOperation records one finished operation.
// Errors carrying a ledger code are rejections; anything else is an error.
func (m *Metrics) ObserveOperation(_ context.Context, op string, err error, elapsed time.Duration) {
	m.Operations.WithLabelValues(op, Outcome(err)).Inc()
	m.OperationDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObservePublished counts n entries published to sink.
func (m *Metrics) ObservePublished(sink string, n int) {
	m.RelayPublished.WithLabelValues(sink).Add(float64(n))
}

// Outcome classifies an operation result.
func Outcome(err error) string {
	if err == nil {
		return OutcomeAccepted
	}
	if _, ok := domain.CodeOf(err); ok {
		return OutcomeRejected
	}
	return OutcomeError
}

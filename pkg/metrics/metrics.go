package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector aggregates ledger operation metrics on its own registry. A nil
// *Collector is valid and records nothing, so tests can pass nil.
type Collector struct {
	registry          *prometheus.Registry
	operationsTotal   *prometheus.CounterVec
	operationDuration prometheus.Histogram
	conflictRetries   prometheus.Counter
	accountBalance    *prometheus.GaugeVec
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	return &Collector{
		registry: registry,
		operationsTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Total number of ledger operations by kind and outcome",
		}, []string{"operation", "status"}),
		operationDuration: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_operation_duration_seconds",
			Help:    "Time taken to execute a ledger operation",
			Buckets: prometheus.DefBuckets,
		}),
		conflictRetries: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "ledger_conflict_retries_total",
			Help: "Number of internal retries after concurrent modification conflicts",
		}),
		accountBalance: promauto.With(registry).NewGaugeVec(prometheus.GaugeOpts{
			Name: "ledger_account_balance",
			Help: "Current stored balance per account",
		}, []string{"account_id"}),
	}
}

// ObserveOperation records one completed ledger operation.
func (c *Collector) ObserveOperation(operation string, duration time.Duration, err error) {
	if c == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	c.operationsTotal.WithLabelValues(operation, status).Inc()
	c.operationDuration.Observe(duration.Seconds())
}

// IncConflictRetry counts one bounded retry after a write conflict.
func (c *Collector) IncConflictRetry() {
	if c == nil {
		return
	}
	c.conflictRetries.Inc()
}

// SetAccountBalance updates the balance gauge. The gauge is observational
// only; the decimal string in the store remains the source of truth.
func (c *Collector) SetAccountBalance(accountId string, balance float64) {
	if c == nil {
		return
	}
	c.accountBalance.WithLabelValues(accountId).Set(balance)
}

// Handler exposes the collector's registry for a /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

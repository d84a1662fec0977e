// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Instruction metrics
	InstructionsTotal   *prometheus.CounterVec
	InstructionDuration *prometheus.HistogramVec

	// Sale metrics
	SalesInitialized prometheus.Counter
	OpenSales        prometheus.Gauge
	TokensSold       prometheus.Counter
	NativeRaised     prometheus.Counter
	Withdrawals      prometheus.Counter

	// Oracle metrics
	OracleQuoteAge    *prometheus.GaugeVec
	OracleQuoteErrors *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulInstruction prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "ico_sale_engine"
	}

	return &Metrics{
		// Instruction metrics
		InstructionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "instructions_total",
			Help:      "Total number of instructions processed by operation and outcome",
		}, []string{"operation", "outcome"}),
		InstructionDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "instruction_duration_seconds",
			Help:      "Instruction processing duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),

		// Sale metrics
		SalesInitialized: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sale",
			Name:      "initialized_total",
			Help:      "Total number of sales initialized",
		}),
		OpenSales: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sale",
			Name:      "open",
			Help:      "Number of sales currently accepting purchases",
		}),
		TokensSold: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sale",
			Name:      "tokens_sold_total",
			Help:      "Total tokens sold across all sales, in base units",
		}),
		NativeRaised: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sale",
			Name:      "native_raised_total",
			Help:      "Total native currency raised across all sales, in base units",
		}),
		Withdrawals: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sale",
			Name:      "withdrawals_total",
			Help:      "Total number of vault withdrawals after sale conclusion",
		}),

		// Oracle metrics
		OracleQuoteAge: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "quote_age_seconds",
			Help:      "Age of the last quote used per feed, in seconds",
		}, []string{"feed"}),
		OracleQuoteErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "quote_errors_total",
			Help:      "Total number of rejected quotes by reason",
		}, []string{"reason"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulInstruction: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_instruction_timestamp",
			Help:      "Unix timestamp of the last successful instruction",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordInstruction records one processed instruction.
func RecordInstruction(operation, outcome string, seconds float64) {
	DefaultMetrics.InstructionsTotal.WithLabelValues(operation, outcome).Inc()
	DefaultMetrics.InstructionDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordSaleInitialized records a newly initialized sale.
func RecordSaleInitialized() {
	DefaultMetrics.SalesInitialized.Inc()
	DefaultMetrics.OpenSales.Inc()
}

// RecordSaleEnded records a sale leaving the open set.
func RecordSaleEnded() {
	DefaultMetrics.OpenSales.Dec()
}

// RecordPurchase records the volume moved by one purchase.
func RecordPurchase(tokens, native uint64) {
	DefaultMetrics.TokensSold.Add(float64(tokens))
	DefaultMetrics.NativeRaised.Add(float64(native))
}

// RecordWithdrawal increments the withdrawal counter.
func RecordWithdrawal() {
	DefaultMetrics.Withdrawals.Inc()
}

// RecordOracleQuote records the age of a quote accepted for pricing.
func RecordOracleQuote(feed string, ageSeconds float64) {
	DefaultMetrics.OracleQuoteAge.WithLabelValues(feed).Set(ageSeconds)
}

// RecordOracleError records a quote rejected before pricing.
func RecordOracleError(reason string) {
	DefaultMetrics.OracleQuoteErrors.WithLabelValues(reason).Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordSuccess updates the last successful instruction timestamp.
func RecordSuccess(unixSeconds int64) {
	DefaultMetrics.LastSuccessfulInstruction.Set(float64(unixSeconds))
}

package metrics

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics are recorded by the dev ledger.
type LedgerMetrics struct {
	TransactionsTotal metrics.Counter
	Height            metrics.Gauge
}

func PromLedgerMetrics() *LedgerMetrics {
	return &LedgerMetrics{
		TransactionsTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: LedgerSubsystem,
			Name:      "transactions_total",
			Help:      "Total number of settled transactions.",
		}, []string{"operation", "status"}),
		Height: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: LedgerSubsystem,
			Name:      "height",
			Help:      "Current ledger height.",
		}, []string{}),
	}
}

func NopLedgerMetrics() *LedgerMetrics {
	return &LedgerMetrics{
		TransactionsTotal: discard.NewCounter(),
		Height:            discard.NewGauge(),
	}
}

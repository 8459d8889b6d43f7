package metrics

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

// BallotMetrics are recorded by the ballot client.
type BallotMetrics struct {
	SubmissionsTotal          metrics.Counter
	SubmissionDurationSeconds metrics.Histogram
	RefreshesTotal            metrics.Counter
	RefreshDurationSeconds    metrics.Histogram
	Height                    metrics.Gauge
	Phase                     metrics.Gauge
}

func PromBallotMetrics() *BallotMetrics {
	return &BallotMetrics{
		SubmissionsTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BallotSubsystem,
			Name:      "submissions_total",
			Help:      "Total number of submitted ballot operations.",
		}, []string{"operation", "status", "kind"}),
		SubmissionDurationSeconds: prometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: Namespace,
			Subsystem: BallotSubsystem,
			Name:      "submission_duration_seconds",
			Help:      "Time from submission to the final receipt.",
		}, []string{"operation", "status"}),
		RefreshesTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BallotSubsystem,
			Name:      "refreshes_total",
			Help:      "Total number of snapshot refreshes.",
		}, []string{"status"}),
		RefreshDurationSeconds: prometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: Namespace,
			Subsystem: BallotSubsystem,
			Name:      "refresh_duration_seconds",
		}, []string{"status"}),
		Height: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: BallotSubsystem,
			Name:      "snapshot_height",
			Help:      "Ledger height of the current snapshot.",
		}, []string{}),
		Phase: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: BallotSubsystem,
			Name:      "phase",
			Help:      "Phase of the ballot in the current snapshot.",
		}, []string{}),
	}
}

func NopBallotMetrics() *BallotMetrics {
	return &BallotMetrics{
		SubmissionsTotal:          discard.NewCounter(),
		SubmissionDurationSeconds: discard.NewHistogram(),
		RefreshesTotal:            discard.NewCounter(),
		RefreshDurationSeconds:    discard.NewHistogram(),
		Height:                    discard.NewGauge(),
		Phase:                     discard.NewGauge(),
	}
}

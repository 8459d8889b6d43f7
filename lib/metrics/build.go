package metrics

import (
	"runtime"
	"time"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"

	"boscoin.io/devote/lib/version"
)

// BuildMetrics describe the running binary.
type BuildMetrics struct {
	Info      metrics.Gauge
	StartTime metrics.Gauge
}

func PromBuildMetrics() *BuildMetrics {
	return &BuildMetrics{
		Info: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "build_info",
			Help:      "Build of the running devote; always 1.",
		}, []string{"version", "git_commit", "build_date", "go_version"}),
		StartTime: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "start_time_seconds",
			Help:      "Unix time the process started serving.",
		}, []string{}),
	}
}

func NopBuildMetrics() *BuildMetrics {
	return &BuildMetrics{
		Info:      discard.NewGauge(),
		StartTime: discard.NewGauge(),
	}
}

// SetBuild records the build of this binary, started at `started`.
func SetBuild(started time.Time) {
	Build.Info.With(
		"version", version.Version,
		"git_commit", version.GitCommit,
		"build_date", version.BuildDate,
		"go_version", runtime.Version(),
	).Set(1)
	Build.StartTime.Set(float64(started.Unix()))
}

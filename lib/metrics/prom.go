package metrics

import (
	"sync"
)

var promOnce sync.Once

// InitPrometheusMetrics replaces the nop metrics with prometheus ones. The
// collectors are registered once; calling it again is a no-op.
func InitPrometheusMetrics() {
	promOnce.Do(func() {
		Build = PromBuildMetrics()
		Ballot = PromBallotMetrics()
		Ledger = PromLedgerMetrics()
		API = PromAPIMetrics()
	})
}

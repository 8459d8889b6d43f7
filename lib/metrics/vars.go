package metrics

var (
	Build  = NopBuildMetrics()
	Ballot = NopBallotMetrics()
	Ledger = NopLedgerMetrics()
	API    = NopAPIMetrics()
)

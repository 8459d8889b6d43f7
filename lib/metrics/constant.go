package metrics

const (
	Namespace       = "devote"
	BallotSubsystem = "ballot"
	LedgerSubsystem = "ledger"
	APISubsystem    = "api"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

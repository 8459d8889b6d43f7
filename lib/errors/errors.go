package errors

var (
	// ledger failures
	Network  = NewError(100, "ledger is not reachable")
	Timeout  = NewError(101, "no final receipt within the bounded wait")
	Rejected = NewError(102, "ledger rejected the operation")
	NotFound = NewError(103, "not found")

	// local precondition failures; never reach the network
	InvalidTransition   = NewError(110, "operation is not allowed in the current phase")
	NotEligible         = NewError(111, "voter is not registered")
	AlreadyVoted        = NewError(112, "voter has already voted")
	InvalidChoice       = NewError(113, "choice index is out of range")
	OperationInProgress = NewError(114, "another write is in flight for this identity")
	NotVerified         = NewError(115, "voter identity is not verified")

	// snapshot
	StaleSnapshot    = NewError(120, "ledger read is older than the current snapshot")
	InconsistentRead = NewError(121, "ledger reads disagree on height")

	// ballot and transaction
	InvalidBallotData   = NewError(130, "invalid ballot data")
	InvalidOperation    = NewError(131, "unknown operation")
	InvalidTransaction  = NewError(132, "invalid transaction")
	BadPublicAddress    = NewError(133, "failed to parse public address")
	InvalidSignature    = NewError(134, "signature verification failed")
	InvalidSequenceID   = NewError(135, "invalid sequence id")
	InvalidQuery        = NewError(136, "unknown query")
	TransactionNotFound = NewError(137, "transaction not found")

	// infrastructure
	InvalidConfig             = NewError(150, "invalid configuration")
	StorageCoreError          = NewError(151, "storage error")
	StorageRecordDoesNotExist = NewError(152, "record does not exist")
	ContentTypeNotJSON        = NewError(153, "content type is not json")
	HTTPServerError           = NewError(154, "http server error")
	TooManyRequests           = NewError(155, "too many requests")
)

// IsTransient reports whether err is a failed-unknown outcome: the
// operation may or may not have reached the ledger.
func IsTransient(err error) bool {
	return Is(err, Network) || Is(err, Timeout)
}

// IsLocal reports whether err is a precondition failure detected before
// any ledger call.
func IsLocal(err error) bool {
	for _, kind := range []*Error{InvalidTransition, NotEligible, AlreadyVoted, InvalidChoice, OperationInProgress, NotVerified} {
		if Is(err, kind) {
			return true
		}
	}

	return false
}

package ledger

import (
	"context"

	"boscoin.io/devote/lib/ballot"
	"boscoin.io/devote/lib/errors"
	"boscoin.io/devote/lib/identity"
)

const (
	StatusNotFound  = "notfound"
	StatusSubmitted = "submitted"
	StatusConfirmed = "confirmed"
	StatusRejected  = "rejected"
)

// Receipt is the final outcome of a confirmed transaction.
type Receipt struct {
	Hash       string               `json:"hash"`
	Signer     string               `json:"signer"`
	Operation  ballot.OperationType `json:"operation"`
	SequenceID uint64               `json:"sequence_id"`
	Height     uint64               `json:"height"`
	Status     string               `json:"status"`
}

// Args are the arguments of a state query, like the voter address.
type Args map[string]string

const ArgAddress = "address"

// DataHeight is the error data key for the ledger height a `NotFound`
// answer was given at.
const DataHeight = "height"

// Reader reads ballot state from the ledger. It fails with
// `errors.Network` or `errors.NotFound`; a `NotFound` carries the ledger
// height under `DataHeight` when the ledger tells it.
type Reader interface {
	ReadState(ctx context.Context, query string, args Args, v interface{}) error
}

// Submitter submits one operation signed by `signer` and waits for its
// final receipt. It fails with `errors.Network`, `errors.Rejected` or
// `errors.Timeout`.
type Submitter interface {
	SubmitTransaction(ctx context.Context, signer identity.Signer, op ballot.OperationType, args interface{}) (Receipt, error)
}

type Gateway interface {
	Reader
	Submitter
}

// NotFoundHeight returns the ledger height of a `errors.NotFound` answer.
func NotFoundHeight(err error) (uint64, bool) {
	if !errors.Is(err, errors.NotFound) {
		return 0, false
	}
	e, ok := errors.As(err)
	if !ok {
		return 0, false
	}

	switch h := e.Data[DataHeight].(type) {
	case uint64:
		return h, true
	case float64:
		return uint64(h), true
	}

	return 0, false
}

package devnet

import (
	"context"
	"encoding/json"

	"boscoin.io/devote/lib/ballot"
	"boscoin.io/devote/lib/errors"
	"boscoin.io/devote/lib/identity"
	"boscoin.io/devote/lib/ledger"
)

// SubmitHook is called by LocalGateway around a submission. An error
// returned before the submission keeps the transaction out of the ledger;
// one returned after it is returned although the transaction landed.
type SubmitHook func(ctx context.Context, op ballot.OperationType) error

type ReadHook func(ctx context.Context, query string) error

// LocalGateway is the ledger.Gateway to an in process Ledger. Values go
// through json as they do over the wire.
type LocalGateway struct {
	ledger *Ledger

	BeforeSubmit SubmitHook
	AfterSubmit  SubmitHook
	BeforeRead   ReadHook
}

func NewLocalGateway(l *Ledger) *LocalGateway {
	return &LocalGateway{ledger: l}
}

func (g *LocalGateway) Ledger() *Ledger {
	return g.ledger
}

func (g *LocalGateway) ReadState(ctx context.Context, query string, args ledger.Args, v interface{}) (err error) {
	if err = ctx.Err(); err != nil {
		return errors.Timeout.Wrap(err).SetData("query", query)
	}
	if g.BeforeRead != nil {
		if err = g.BeforeRead(ctx, query); err != nil {
			return
		}
	}

	var state interface{}
	switch query {
	case ballot.QueryBallot:
		state, err = g.ledger.Ballot()
	case ballot.QueryChoices:
		state, err = g.ledger.Choices()
	case ballot.QueryVoterCount:
		state, err = g.ledger.VoterCount()
	case ballot.QueryVoter:
		if len(args[ledger.ArgAddress]) < 1 {
			return errors.InvalidQuery.Clone().SetData("query", query).SetData("missing", ledger.ArgAddress)
		}
		state, err = g.ledger.Voter(args[ledger.ArgAddress])
	case ballot.QueryAccount:
		if len(args[ledger.ArgAddress]) < 1 {
			return errors.InvalidQuery.Clone().SetData("query", query).SetData("missing", ledger.ArgAddress)
		}
		state, err = g.ledger.Account(args[ledger.ArgAddress])
	default:
		return errors.InvalidQuery.Clone().SetData("query", query)
	}

	if err != nil {
		return errors.Network.Wrap(err).SetData("query", query)
	}

	return remarshal(state, v)
}

func (g *LocalGateway) SubmitTransaction(ctx context.Context, signer identity.Signer, op ballot.OperationType, args interface{}) (receipt ledger.Receipt, err error) {
	if g.BeforeSubmit != nil {
		if err = g.BeforeSubmit(ctx, op); err != nil {
			return
		}
	}
	if err = ctx.Err(); err != nil {
		err = errors.Timeout.Wrap(err)
		return
	}

	var account ledger.AccountState
	if account, err = g.ledger.Account(signer.Address()); err != nil {
		err = errors.Network.Wrap(err)
		return
	}

	var tx ledger.Transaction
	if tx, err = ledger.NewTransaction(signer.Address(), account.SequenceID, op, args); err != nil {
		return
	}
	if err = tx.Sign(signer, g.ledger.NetworkID()); err != nil {
		return
	}

	var status ledger.TransactionStatus
	if status, err = g.ledger.Submit(tx); err != nil {
		if errors.Is(err, errors.StorageCoreError) {
			err = errors.Network.Wrap(err).SetData("hash", tx.GetHash())
		} else {
			err = errors.Rejected.Wrap(err).SetData("hash", tx.GetHash())
		}
		return
	}

	if g.AfterSubmit != nil {
		if err = g.AfterSubmit(ctx, op); err != nil {
			return
		}
	}

	if status.Status == ledger.StatusRejected {
		err = errors.Rejected.Clone().
			SetData("hash", status.Hash).
			SetData("reason", status.Reason)
		return
	}

	receipt = status.Receipt()

	return
}

func remarshal(from, to interface{}) error {
	b, err := json.Marshal(from)
	if err != nil {
		return errors.Network.Wrap(err)
	}
	if err = json.Unmarshal(b, to); err != nil {
		return errors.Network.Wrap(err)
	}

	return nil
}

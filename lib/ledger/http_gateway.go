package ledger

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"boscoin.io/devote/lib/ballot"
	"boscoin.io/devote/lib/client"
	"boscoin.io/devote/lib/common"
	"boscoin.io/devote/lib/errors"
	"boscoin.io/devote/lib/identity"
)

var queryPaths = map[string]string{
	ballot.QueryBallot:     client.UrlBallot,
	ballot.QueryChoices:    client.UrlBallotChoices,
	ballot.QueryVoterCount: client.UrlBallotVoters,
	ballot.QueryVoter:      client.UrlBallotVoter,
	ballot.QueryAccount:    client.UrlAccount,
}

// HTTPGateway is the Gateway to a ledger API. A submission loads the
// signer's sequence id, posts the signed transaction and polls its status
// until it is final or the submit timeout expires.
type HTTPGateway struct {
	client *client.Client
	config common.Config

	// final transaction statuses by hash
	receipts *lru.Cache
}

func NewHTTPGateway(c *client.Client, config common.Config) (*HTTPGateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	receipts, err := lru.New(config.ReceiptCacheSize)
	if err != nil {
		return nil, errors.InvalidConfig.Wrap(err)
	}

	return &HTTPGateway{
		client:   c,
		config:   config,
		receipts: receipts,
	}, nil
}

func (g *HTTPGateway) ReadState(ctx context.Context, query string, args Args, v interface{}) error {
	path, found := queryPaths[query]
	if !found {
		return errors.InvalidQuery.Clone().SetData("query", query)
	}

	if strings.Contains(path, "{id}") {
		address := args[ArgAddress]
		if len(address) < 1 {
			return errors.InvalidQuery.Clone().SetData("query", query).SetData("missing", ArgAddress)
		}
		path = client.WithID(path, address)
	}

	ctx, cancel := context.WithTimeout(ctx, g.config.ReadTimeout)
	defer cancel()

	if err := g.client.Load(ctx, path, v); err != nil {
		return classifyError(ctx, err).SetData("query", query)
	}

	return nil
}

func (g *HTTPGateway) SubmitTransaction(ctx context.Context, signer identity.Signer, op ballot.OperationType, args interface{}) (receipt Receipt, err error) {
	ctx, cancel := context.WithTimeout(ctx, g.config.SubmitTimeout)
	defer cancel()

	var account client.Account
	if account, err = g.client.LoadAccount(ctx, signer.Address()); err != nil {
		err = classifyError(ctx, err).SetData("step", "load-account")
		return
	}

	var tx Transaction
	if tx, err = NewTransaction(signer.Address(), account.SequenceID, op, args); err != nil {
		return
	}
	if err = tx.Sign(signer, g.config.NetworkID); err != nil {
		return
	}

	var body []byte
	if body, err = tx.Serialize(); err != nil {
		err = errors.InvalidTransaction.Wrap(err)
		return
	}

	logger := log.New(txLogContext(tx)...)
	logger.Debug("submitting transaction")

	if _, err = g.client.SubmitTransaction(ctx, body); err != nil {
		err = classifyError(ctx, err).SetData("hash", tx.GetHash())
		logger.Debug("failed to submit transaction", "error", err)
		return
	}

	var status TransactionStatus
	if status, err = g.WaitTransaction(ctx, tx.GetHash()); err != nil {
		logger.Debug("transaction is not settled", "error", err)
		return
	}

	receipt = status.Receipt()
	logger.Debug("transaction confirmed", "height", receipt.Height)

	return
}

// WaitTransaction polls the status of a submitted transaction until it is
// confirmed or rejected. It fails with `errors.Timeout` when `ctx` is done
// first; the transaction may still land after that.
func (g *HTTPGateway) WaitTransaction(ctx context.Context, hash string) (status TransactionStatus, err error) {
	ticker := time.NewTicker(g.config.ReceiptPollInterval)
	defer ticker.Stop()

	for {
		status, err = g.LoadTransactionStatus(ctx, hash)
		switch {
		case err == nil && status.Status == StatusConfirmed:
			return
		case err == nil && status.Status == StatusRejected:
			err = errors.Rejected.Clone().
				SetData("hash", hash).
				SetData("reason", status.Reason)
			return
		case err != nil && !errors.IsTransient(err) && !errors.Is(err, errors.NotFound):
			return
		}

		select {
		case <-ctx.Done():
			err = errors.Timeout.Clone().SetData("hash", hash)
			return
		case <-ticker.C:
		}
	}
}

// LoadTransactionStatus returns the latest known status of a transaction.
// Final statuses are cached.
func (g *HTTPGateway) LoadTransactionStatus(ctx context.Context, hash string) (status TransactionStatus, err error) {
	if cached, found := g.receipts.Get(hash); found {
		return cached.(TransactionStatus), nil
	}

	var loaded client.TransactionStatus
	if loaded, err = g.client.LoadTransactionStatus(ctx, hash); err != nil {
		err = classifyError(ctx, err).SetData("hash", hash)
		return
	}

	status = TransactionStatus{
		Hash:       loaded.Hash,
		Source:     loaded.Source,
		Operation:  ballot.OperationType(loaded.Operation),
		SequenceID: loaded.SequenceID,
		Status:     loaded.Status,
		Height:     loaded.Height,
		Reason:     loaded.Reason,
	}
	if status.IsFinal() {
		g.receipts.Add(hash, status)
	}

	return
}

// classifyError maps a client error to the ledger error kinds. Problem
// documents are the ledger's own answer: 404 is `NotFound`, overload and
// server errors are `Network`, any other refusal is `Rejected`. Everything
// else did not get an answer and is `Network`, or `Timeout` once `ctx` is
// done.
func classifyError(ctx context.Context, err error) *errors.Error {
	if e, ok := err.(client.Error); ok {
		p := e.Problem
		var kind *errors.Error
		switch {
		case p.Status == http.StatusNotFound:
			kind = errors.NotFound
		case p.Status == http.StatusTooManyRequests, p.Status >= http.StatusInternalServerError:
			kind = errors.Network
		default:
			kind = errors.Rejected
		}

		n := kind.Wrap(err).SetData("status", p.Status)
		if p.Code > 0 {
			n.SetData("code", p.Code)
		}
		if len(p.Detail) > 0 {
			n.SetData("detail", p.Detail)
		}
		if h, found := p.Data[DataHeight].(float64); found && kind == errors.NotFound {
			n.SetData(DataHeight, uint64(h))
		}
		return n
	}

	if ctx.Err() != nil {
		return errors.Timeout.Wrap(err)
	}
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return errors.Timeout.Wrap(err)
	}

	return errors.Network.Wrap(err)
}

func txLogContext(tx Transaction) []interface{} {
	return []interface{}{
		"hash", tx.GetHash(),
		"source", tx.Source(),
		"sequence_id", tx.B.SequenceID,
		"operation", tx.B.Operation.Type,
	}
}

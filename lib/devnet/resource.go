package devnet

import (
	"strings"

	"github.com/nvellon/hal"

	"boscoin.io/devote/lib/client"
	"boscoin.io/devote/lib/ledger"
)

const (
	URLAccount           = client.UrlPrefixForAPIV1 + client.UrlAccount
	URLTransactions      = client.UrlPrefixForAPIV1 + client.UrlTransactions
	URLTransaction       = client.UrlPrefixForAPIV1 + client.UrlTransaction
	URLTransactionStatus = client.UrlPrefixForAPIV1 + client.UrlTransactionStatus
	URLBallot            = client.UrlPrefixForAPIV1 + client.UrlBallot
	URLBallotChoices     = client.UrlPrefixForAPIV1 + client.UrlBallotChoices
	URLBallotVoters      = client.UrlPrefixForAPIV1 + client.UrlBallotVoters
	URLBallotVoter       = client.UrlPrefixForAPIV1 + client.UrlBallotVoter
)

func withID(pattern, id string) string {
	return strings.Replace(pattern, "{id}", id, -1)
}

type AccountResource struct {
	a ledger.AccountState
}

func NewAccountResource(a ledger.AccountState) AccountResource {
	return AccountResource{a: a}
}

func (a AccountResource) GetMap() hal.Entry {
	return hal.Entry{
		"address":     a.a.Address,
		"sequence_id": a.a.SequenceID,
	}
}

func (a AccountResource) Resource() *hal.Resource {
	return hal.NewResource(a, a.LinkSelf())
}

func (a AccountResource) LinkSelf() string {
	return withID(URLAccount, a.a.Address)
}

type TransactionResource struct {
	tx ledger.Transaction
}

func NewTransactionResource(tx ledger.Transaction) TransactionResource {
	return TransactionResource{tx: tx}
}

func (t TransactionResource) GetMap() hal.Entry {
	return hal.Entry{
		"hash":        t.tx.GetHash(),
		"source":      t.tx.Source(),
		"sequence_id": t.tx.B.SequenceID,
		"created":     t.tx.H.Created,
		"signature":   t.tx.H.Signature,
		"operation":   t.tx.B.Operation,
	}
}

func (t TransactionResource) Resource() *hal.Resource {
	r := hal.NewResource(t, t.LinkSelf())
	r.AddLink("account", hal.NewLink(withID(URLAccount, t.tx.Source())))
	r.AddLink("status", hal.NewLink(withID(URLTransactionStatus, t.tx.GetHash())))
	return r
}

func (t TransactionResource) LinkSelf() string {
	return withID(URLTransaction, t.tx.GetHash())
}

// TransactionPostResource is the answer to an accepted submission.
type TransactionPostResource struct {
	status ledger.TransactionStatus
}

func NewTransactionPostResource(status ledger.TransactionStatus) TransactionPostResource {
	return TransactionPostResource{status: status}
}

func (t TransactionPostResource) GetMap() hal.Entry {
	return hal.Entry{
		"hash":   t.status.Hash,
		"status": ledger.StatusSubmitted,
	}
}

func (t TransactionPostResource) Resource() *hal.Resource {
	r := hal.NewResource(t, t.LinkSelf())
	r.AddLink("status", hal.NewLink(withID(URLTransactionStatus, t.status.Hash)))
	return r
}

func (t TransactionPostResource) LinkSelf() string {
	return withID(URLTransaction, t.status.Hash)
}

type TransactionStatusResource struct {
	status ledger.TransactionStatus
}

func NewTransactionStatusResource(status ledger.TransactionStatus) TransactionStatusResource {
	return TransactionStatusResource{status: status}
}

func (t TransactionStatusResource) GetMap() hal.Entry {
	return hal.Entry{
		"hash":        t.status.Hash,
		"source":      t.status.Source,
		"operation":   t.status.Operation,
		"sequence_id": t.status.SequenceID,
		"status":      t.status.Status,
		"height":      t.status.Height,
		"reason":      t.status.Reason,
	}
}

func (t TransactionStatusResource) Resource() *hal.Resource {
	r := hal.NewResource(t, t.LinkSelf())
	r.AddLink("transaction", hal.NewLink(withID(URLTransaction, t.status.Hash)))
	return r
}

func (t TransactionStatusResource) LinkSelf() string {
	return withID(URLTransactionStatus, t.status.Hash)
}

type BallotResource struct {
	b ledger.BallotState
}

func NewBallotResource(b ledger.BallotState) BallotResource {
	return BallotResource{b: b}
}

func (b BallotResource) GetMap() hal.Entry {
	return hal.Entry{
		"name":     b.b.Name,
		"proposal": b.b.Proposal,
		"creator":  b.b.Creator,
		"phase":    b.b.Phase,
		"height":   b.b.Height,
	}
}

func (b BallotResource) Resource() *hal.Resource {
	r := hal.NewResource(b, b.LinkSelf())
	r.AddLink("choices", hal.NewLink(URLBallotChoices))
	r.AddLink("voters", hal.NewLink(URLBallotVoters))
	r.AddLink("voter", hal.NewLink(URLBallotVoter, hal.LinkAttr{"templated": true}))
	return r
}

func (b BallotResource) LinkSelf() string {
	return URLBallot
}

type ChoicesResource struct {
	c ledger.ChoicesState
}

func NewChoicesResource(c ledger.ChoicesState) ChoicesResource {
	return ChoicesResource{c: c}
}

func (c ChoicesResource) GetMap() hal.Entry {
	return hal.Entry{
		"choices": c.c.Choices,
		"height":  c.c.Height,
	}
}

func (c ChoicesResource) Resource() *hal.Resource {
	r := hal.NewResource(c, c.LinkSelf())
	r.AddLink("ballot", hal.NewLink(URLBallot))
	return r
}

func (c ChoicesResource) LinkSelf() string {
	return URLBallotChoices
}

type VoterCountResource struct {
	v ledger.VoterCountState
}

func NewVoterCountResource(v ledger.VoterCountState) VoterCountResource {
	return VoterCountResource{v: v}
}

func (v VoterCountResource) GetMap() hal.Entry {
	return hal.Entry{
		"total_voters": v.v.TotalVoters,
		"height":       v.v.Height,
	}
}

func (v VoterCountResource) Resource() *hal.Resource {
	r := hal.NewResource(v, v.LinkSelf())
	r.AddLink("voter", hal.NewLink(URLBallotVoter, hal.LinkAttr{"templated": true}))
	return r
}

func (v VoterCountResource) LinkSelf() string {
	return URLBallotVoters
}

type VoterResource struct {
	v ledger.VoterState
}

func NewVoterResource(v ledger.VoterState) VoterResource {
	return VoterResource{v: v}
}

func (v VoterResource) GetMap() hal.Entry {
	return hal.Entry{
		"address":    v.v.Address,
		"registered": v.v.Registered,
		"has_voted":  v.v.HasVoted,
		"height":     v.v.Height,
	}
}

func (v VoterResource) Resource() *hal.Resource {
	r := hal.NewResource(v, v.LinkSelf())
	r.AddLink("account", hal.NewLink(withID(URLAccount, v.v.Address)))
	return r
}

func (v VoterResource) LinkSelf() string {
	return withID(URLBallotVoter, v.v.Address)
}

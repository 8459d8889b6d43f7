package devnet

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"boscoin.io/devote/lib/ballot"
	"boscoin.io/devote/lib/common/keypair"
	"boscoin.io/devote/lib/common/observer"
	"boscoin.io/devote/lib/errors"
	"boscoin.io/devote/lib/identity"
	"boscoin.io/devote/lib/ledger"
)

func makeTransaction(t *testing.T, l *Ledger, signer identity.Signer, op ballot.OperationType, args interface{}) ledger.Transaction {
	account, err := l.Account(signer.Address())
	require.NoError(t, err)

	tx, err := ledger.NewTransaction(signer.Address(), account.SequenceID, op, args)
	require.NoError(t, err)
	require.NoError(t, tx.Sign(signer, l.NetworkID()))

	return tx
}

func submit(t *testing.T, l *Ledger, signer identity.Signer, op ballot.OperationType, args interface{}) ledger.TransactionStatus {
	status, err := l.Submit(makeTransaction(t, l, signer, op, args))
	require.NoError(t, err)

	return status
}

func createArgs(voters ...string) ballot.CreateArgs {
	return ballot.NewCreateArgs(
		ballot.BallotData{Name: "lunch", Proposal: "what to eat"},
		[]string{"A", "B"},
		voters,
	)
}

func TestLedgerLifecycle(t *testing.T) {
	l := NewTestLedger()
	defer l.Close()

	creator := identity.NewKeypair(keypair.Random())
	voter := identity.NewKeypair(keypair.Random())

	state, err := l.Ballot()
	require.NoError(t, err)
	require.Equal(t, ballot.PhaseUncreated, state.Phase)
	require.Equal(t, uint64(0), state.Height)

	status := submit(t, l, creator, ballot.OperationCreate, createArgs(voter.Address(), voter.Address()))
	require.Equal(t, ledger.StatusConfirmed, status.Status)
	require.Equal(t, uint64(1), status.Height)

	state, err = l.Ballot()
	require.NoError(t, err)
	require.Equal(t, ballot.PhaseCreated, state.Phase)
	require.Equal(t, creator.Address(), state.Creator)
	require.Equal(t, "lunch", state.Name)

	count, err := l.VoterCount()
	require.NoError(t, err)
	require.Equal(t, uint64(1), count.TotalVoters)

	status = submit(t, l, creator, ballot.OperationStart, nil)
	require.Equal(t, ledger.StatusConfirmed, status.Status)

	status = submit(t, l, voter, ballot.OperationVote, ballot.VoteArgs{Choice: 1})
	require.Equal(t, ledger.StatusConfirmed, status.Status)

	choices, err := l.Choices()
	require.NoError(t, err)
	require.Equal(t, []ballot.Choice{{Label: "A"}, {Label: "B", VoteCount: 1}}, choices.Choices)
	require.Equal(t, uint64(3), choices.Height)

	record, err := l.Voter(voter.Address())
	require.NoError(t, err)
	require.True(t, record.Registered)
	require.True(t, record.HasVoted)

	status = submit(t, l, creator, ballot.OperationEnd, nil)
	require.Equal(t, ledger.StatusConfirmed, status.Status)

	state, err = l.Ballot()
	require.NoError(t, err)
	require.Equal(t, ballot.PhaseVotingClosed, state.Phase)
	require.Equal(t, uint64(4), state.Height)

	account, err := l.Account(creator.Address())
	require.NoError(t, err)
	require.Equal(t, uint64(3), account.SequenceID)

	tx, err := l.Transaction(status.Hash)
	require.NoError(t, err)
	require.Equal(t, ballot.OperationEnd, tx.B.Operation.Type)
}

func TestLedgerProgramRejects(t *testing.T) {
	l := NewTestLedger()
	defer l.Close()

	creator := identity.NewKeypair(keypair.Random())
	voter := identity.NewKeypair(keypair.Random())
	stranger := identity.NewKeypair(keypair.Random())

	{ // start before create
		status := submit(t, l, creator, ballot.OperationStart, nil)
		require.Equal(t, ledger.StatusRejected, status.Status)
		require.Contains(t, status.Reason, errors.InvalidTransition.Message)
	}

	submit(t, l, creator, ballot.OperationCreate, createArgs(voter.Address()))

	{ // register by non creator
		status := submit(t, l, stranger, ballot.OperationRegister, ballot.RegisterArgs{Voters: []string{stranger.Address()}})
		require.Equal(t, ledger.StatusRejected, status.Status)
		require.Contains(t, status.Reason, "signer is not the ballot creator")
	}

	{ // start by non creator; the sequence id is consumed
		status := submit(t, l, stranger, ballot.OperationStart, nil)
		require.Equal(t, ledger.StatusRejected, status.Status)

		account, err := l.Account(stranger.Address())
		require.NoError(t, err)
		require.Equal(t, uint64(2), account.SequenceID)

		state, err := l.Ballot()
		require.NoError(t, err)
		require.Equal(t, ballot.PhaseCreated, state.Phase)
	}

	{ // second create
		status := submit(t, l, creator, ballot.OperationCreate, createArgs())
		require.Equal(t, ledger.StatusRejected, status.Status)
	}

	submit(t, l, creator, ballot.OperationStart, nil)

	{ // not registered
		status := submit(t, l, stranger, ballot.OperationVote, ballot.VoteArgs{Choice: 0})
		require.Equal(t, ledger.StatusRejected, status.Status)
		require.Equal(t, errors.NotEligible.Message, status.Reason)
	}

	{ // out of range
		status := submit(t, l, voter, ballot.OperationVote, ballot.VoteArgs{Choice: 2})
		require.Equal(t, ledger.StatusRejected, status.Status)
		require.Equal(t, errors.InvalidChoice.Message, status.Reason)
	}

	submit(t, l, voter, ballot.OperationVote, ballot.VoteArgs{Choice: 0})

	{ // twice
		status := submit(t, l, voter, ballot.OperationVote, ballot.VoteArgs{Choice: 1})
		require.Equal(t, ledger.StatusRejected, status.Status)
		require.Equal(t, errors.AlreadyVoted.Message, status.Reason)

		choices, err := l.Choices()
		require.NoError(t, err)
		require.Equal(t, uint64(1), choices.Choices[0].VoteCount)
		require.Equal(t, uint64(0), choices.Choices[1].VoteCount)
	}
}

func TestLedgerRegisterVoters(t *testing.T) {
	l := NewTestLedger()
	defer l.Close()

	creator := identity.NewKeypair(keypair.Random())
	v1 := identity.NewKeypair(keypair.Random())
	v2 := identity.NewKeypair(keypair.Random())

	submit(t, l, creator, ballot.OperationCreate, createArgs(v1.Address()))

	status := submit(t, l, creator, ballot.OperationRegister, ballot.RegisterArgs{Voters: []string{v1.Address(), v2.Address()}})
	require.Equal(t, ledger.StatusConfirmed, status.Status)

	count, err := l.VoterCount()
	require.NoError(t, err)
	require.Equal(t, uint64(2), count.TotalVoters)

	status = submit(t, l, creator, ballot.OperationRegister, ballot.RegisterArgs{Voters: []string{"not-an-address"}})
	require.Equal(t, ledger.StatusRejected, status.Status)

	submit(t, l, creator, ballot.OperationStart, nil)

	status = submit(t, l, creator, ballot.OperationRegister, ballot.RegisterArgs{Voters: []string{creator.Address()}})
	require.Equal(t, ledger.StatusRejected, status.Status)
}

func TestLedgerSubmitRefused(t *testing.T) {
	l := NewTestLedger()
	defer l.Close()

	creator := identity.NewKeypair(keypair.Random())

	{ // wrong sequence id
		tx, err := ledger.NewTransaction(creator.Address(), 3, ballot.OperationCreate, createArgs())
		require.NoError(t, err)
		require.NoError(t, tx.Sign(creator, l.NetworkID()))

		_, err = l.Submit(tx)
		require.True(t, errors.Is(err, errors.InvalidSequenceID))
	}

	{ // signed for another network
		tx, err := ledger.NewTransaction(creator.Address(), 0, ballot.OperationCreate, createArgs())
		require.NoError(t, err)
		require.NoError(t, tx.Sign(creator, []byte("another-network")))

		_, err = l.Submit(tx)
		require.True(t, errors.Is(err, errors.InvalidSignature))
	}

	height, err := l.Height()
	require.NoError(t, err)
	require.Equal(t, uint64(0), height)

	account, err := l.Account(creator.Address())
	require.NoError(t, err)
	require.Equal(t, uint64(0), account.SequenceID)

	{ // same transaction twice
		tx := makeTransaction(t, l, creator, ballot.OperationCreate, createArgs())
		first, err := l.Submit(tx)
		require.NoError(t, err)

		second, err := l.Submit(tx)
		require.NoError(t, err)
		require.Equal(t, first, second)

		height, err := l.Height()
		require.NoError(t, err)
		require.Equal(t, uint64(1), height)
	}
}

func TestLedgerTransactionEvent(t *testing.T) {
	l := NewTestLedger()
	defer l.Close()

	creator := identity.NewKeypair(keypair.Random())
	tx := makeTransaction(t, l, creator, ballot.OperationCreate, createArgs())

	settled := make(chan ledger.TransactionStatus, 1)
	cb := func(args ...interface{}) {
		settled <- args[0].(ledger.TransactionStatus)
	}
	observer.TransactionObserver.On(EventTransaction(tx.GetHash()), cb)
	defer observer.TransactionObserver.Off(EventTransaction(tx.GetHash()), cb)

	_, err := l.Submit(tx)
	require.NoError(t, err)

	select {
	case status := <-settled:
		require.Equal(t, tx.GetHash(), status.Hash)
		require.Equal(t, ledger.StatusConfirmed, status.Status)
	case <-time.After(time.Second):
		require.Fail(t, "transaction event was not triggered")
	}
}

func TestLocalGateway(t *testing.T) {
	l := NewTestLedger()
	defer l.Close()

	g := NewLocalGateway(l)
	creator := identity.NewKeypair(keypair.Random())
	ctx := context.Background()

	{ // fails before landing
		g.BeforeSubmit = func(context.Context, ballot.OperationType) error {
			return errors.Network.Clone()
		}
		_, err := g.SubmitTransaction(ctx, creator, ballot.OperationCreate, createArgs())
		require.True(t, errors.Is(err, errors.Network))

		var state ledger.BallotState
		require.NoError(t, g.ReadState(ctx, ballot.QueryBallot, nil, &state))
		require.Equal(t, ballot.PhaseUncreated, state.Phase)
		g.BeforeSubmit = nil
	}

	{ // fails after landing
		g.AfterSubmit = func(context.Context, ballot.OperationType) error {
			return errors.Timeout.Clone()
		}
		_, err := g.SubmitTransaction(ctx, creator, ballot.OperationCreate, createArgs())
		require.True(t, errors.Is(err, errors.Timeout))

		var state ledger.BallotState
		require.NoError(t, g.ReadState(ctx, ballot.QueryBallot, nil, &state))
		require.Equal(t, ballot.PhaseCreated, state.Phase)
		g.AfterSubmit = nil
	}

	{ // rejected by the program
		_, err := g.SubmitTransaction(ctx, creator, ballot.OperationCreate, createArgs())
		require.True(t, errors.Is(err, errors.Rejected))
	}

	{ // confirmed
		receipt, err := g.SubmitTransaction(ctx, creator, ballot.OperationStart, nil)
		require.NoError(t, err)
		require.Equal(t, uint64(3), receipt.Height)
		require.Equal(t, creator.Address(), receipt.Signer)
	}

	{ // reads
		var voter ledger.VoterState
		require.NoError(t, g.ReadState(ctx, ballot.QueryVoter, ledger.Args{ledger.ArgAddress: creator.Address()}, &voter))
		require.False(t, voter.Registered)
		require.Equal(t, uint64(3), voter.Height)

		err := g.ReadState(ctx, ballot.QueryVoter, nil, &voter)
		require.True(t, errors.Is(err, errors.InvalidQuery))

		err = g.ReadState(ctx, "unknown", nil, &voter)
		require.True(t, errors.Is(err, errors.InvalidQuery))

		g.BeforeRead = func(context.Context, string) error {
			return errors.Network.Clone()
		}
		err = g.ReadState(ctx, ballot.QueryChoices, nil, &ledger.ChoicesState{})
		require.True(t, errors.Is(err, errors.Network))
	}
}

package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"boscoin.io/devote/lib/ballot"
	"boscoin.io/devote/lib/common"
	"boscoin.io/devote/lib/common/keypair"
	"boscoin.io/devote/lib/errors"
)

func runOperationChecker(snapshot ballot.Snapshot, identity string, op ballot.OperationType, args interface{}) error {
	checker := &OperationChecker{
		DefaultChecker: common.DefaultChecker{Funcs: OperationCheckerFuncs},
		Snapshot:       snapshot,
		Identity:       identity,
		Operation:      op,
		Args:           args,
	}

	return common.RunChecker(checker, common.DefaultDeferFunc)
}

func TestOperationChecker(t *testing.T) {
	creator := keypair.Random().Address()
	stranger := keypair.Random().Address()

	snapshot := ballot.NewEmptySnapshot()
	snapshot.Ballot = ballot.Ballot{Name: "n", Proposal: "p", Creator: creator, Phase: ballot.PhaseCreated}

	require.NoError(t, runOperationChecker(snapshot, creator, ballot.OperationStart, nil))
	require.NoError(t, runOperationChecker(snapshot, creator, ballot.OperationRegister, ballot.RegisterArgs{Voters: []string{stranger}}))

	{ // wrong phase
		err := runOperationChecker(snapshot, creator, ballot.OperationEnd, nil)
		require.True(t, errors.Is(err, errors.InvalidTransition))

		e, _ := errors.As(err)
		require.Equal(t, ballot.PhaseVotingOpen, e.Data["required"])
	}

	{ // not the creator
		err := runOperationChecker(snapshot, stranger, ballot.OperationStart, nil)
		require.True(t, errors.Is(err, errors.InvalidTransition))
	}

	{ // malformed arguments
		err := runOperationChecker(snapshot, creator, ballot.OperationRegister, ballot.RegisterArgs{})
		require.True(t, errors.Is(err, errors.InvalidBallotData))
	}

	{ // anyone may create
		err := runOperationChecker(ballot.NewEmptySnapshot(), stranger, ballot.OperationCreate, ballot.NewCreateArgs(
			ballot.BallotData{Name: "n", Proposal: "p"}, []string{"A"}, nil,
		))
		require.NoError(t, err)
	}
}

package ballot

import (
	"testing"

	"github.com/stretchr/testify/require"

	"boscoin.io/devote/lib/common/keypair"
	"boscoin.io/devote/lib/errors"
)

func TestOperationType(t *testing.T) {
	require.True(t, OperationVote.IsValid())
	require.False(t, OperationType("delete").IsValid())

	require.Equal(t, PhaseUncreated, OperationCreate.RequiredPhase())
	require.Equal(t, PhaseCreated, OperationStart.RequiredPhase())
	require.Equal(t, PhaseCreated, OperationRegister.RequiredPhase())
	require.Equal(t, PhaseVotingOpen, OperationEnd.RequiredPhase())
	require.Equal(t, PhaseVotingOpen, OperationVote.RequiredPhase())

	require.True(t, OperationEnd.CreatorOnly())
	require.False(t, OperationVote.CreatorOnly())
	require.False(t, OperationCreate.CreatorOnly())
}

func TestCreateArgsIsWellFormed(t *testing.T) {
	voter := keypair.Random().Address()

	args := NewCreateArgs(BallotData{Name: " lunch ", Proposal: "what to eat"}, []string{"A", " B"}, []string{voter, voter, ""})
	require.NoError(t, args.IsWellFormed())
	require.Equal(t, "lunch", args.Name)
	require.Equal(t, []string{"A", "B"}, args.Choices)
	require.Equal(t, []string{voter}, args.Voters)

	{
		a := args
		a.Name = ""
		require.True(t, errors.Is(a.IsWellFormed(), errors.InvalidBallotData))
	}
	{
		a := args
		a.Choices = nil
		require.True(t, errors.Is(a.IsWellFormed(), errors.InvalidBallotData))
	}
	{
		a := args
		a.Choices = []string{"A", "A"}
		require.True(t, errors.Is(a.IsWellFormed(), errors.InvalidBallotData))
	}
	{
		a := args
		a.Voters = []string{"not-an-address"}
		require.True(t, errors.Is(a.IsWellFormed(), errors.BadPublicAddress))
	}
	{ // a secret seed is not an address
		a := args
		a.Voters = []string{keypair.Random().Seed()}
		require.True(t, errors.Is(a.IsWellFormed(), errors.BadPublicAddress))
	}
}

func TestRegisterArgsIsWellFormed(t *testing.T) {
	require.True(t, errors.Is(RegisterArgs{}.IsWellFormed(), errors.InvalidBallotData))
	require.NoError(t, RegisterArgs{Voters: []string{keypair.Random().Address()}}.IsWellFormed())
}

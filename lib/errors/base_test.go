package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/require"
)

func TestErrorsClone(t *testing.T) {
	require.Equal(t, AlreadyVoted, AlreadyVoted)

	e := AlreadyVoted.Clone()
	e0 := e.Clone()
	require.NotEqual(t, fmt.Sprintf("%p", e), fmt.Sprintf("%p", e0))

	{
		e.Code = 200
		require.NotEqual(t, e.Code, e0.Code)
	}

	{
		e0.SetData("showme", "killme")
		require.NotEqual(t, e.Data, e0.Data)
		require.Empty(t, AlreadyVoted.Data)
	}
}

func TestErrorsRLP(t *testing.T) {
	{
		_, err := rlp.EncodeToBytes(AlreadyVoted)
		require.NoError(t, err)
	}

	{ // with `SetData()`, the rlp encoded value must be different
		encoded, err := rlp.EncodeToBytes(AlreadyVoted)
		require.NoError(t, err)

		e := AlreadyVoted.Clone()
		e.SetData("findme", "killme")
		encoded0, err := rlp.EncodeToBytes(e)
		require.NoError(t, err)
		require.NotEqual(t, encoded, encoded0)
	}
}

func TestErrorsIs(t *testing.T) {
	e := InvalidTransition.Clone().SetData("phase", "created")
	require.True(t, Is(e, InvalidTransition))
	require.False(t, Is(e, AlreadyVoted))

	wrapped := fmt.Errorf("start voting: %w", e)
	require.True(t, Is(wrapped, InvalidTransition))

	found, ok := As(wrapped)
	require.True(t, ok)
	require.Equal(t, "created", found.Data["phase"])
}

func TestErrorsWrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	e := Network.Wrap(cause)

	require.True(t, Is(e, Network))
	require.Equal(t, cause, stderrors.Unwrap(e))
	require.Equal(t, "connection refused", e.Data["cause"])
	require.Nil(t, Network.Unwrap())
}

func TestErrorsKinds(t *testing.T) {
	require.True(t, IsTransient(Timeout.Clone()))
	require.True(t, IsTransient(Network.Wrap(stderrors.New("eof"))))
	require.False(t, IsTransient(Rejected.Clone()))

	require.True(t, IsLocal(OperationInProgress.Clone()))
	require.True(t, IsLocal(InvalidChoice))
	require.True(t, IsLocal(NotVerified.Clone().SetData("address", "GA")))
	require.False(t, IsLocal(Rejected))
	require.False(t, IsLocal(stderrors.New("plain")))
}

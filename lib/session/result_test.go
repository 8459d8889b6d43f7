package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"boscoin.io/devote/lib/errors"
	"boscoin.io/devote/lib/ledger"
)

func TestOperationSuccess(t *testing.T) {
	unblock := make(chan struct{})
	o := Go(time.Second, func(ctx context.Context) (Result, error) {
		<-unblock
		return Result{Receipt: ledger.Receipt{Hash: "findme"}}, nil
	})

	require.Equal(t, StatusPending, o.Status())

	{ // waiting is abandoned; the operation keeps running
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := o.Wait(ctx)
		require.Equal(t, context.DeadlineExceeded, err)
		require.Equal(t, StatusPending, o.Status())
	}

	close(unblock)

	result, err := o.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, "findme", result.Receipt.Hash)
	require.Equal(t, StatusSuccess, o.Status())
	require.Equal(t, "success", o.Status().String())
}

func TestOperationFailed(t *testing.T) {
	o := Go(10*time.Millisecond, func(ctx context.Context) (Result, error) {
		<-ctx.Done()
		return Result{}, errors.Timeout.Clone()
	})

	select {
	case <-o.Done():
	case <-time.After(time.Second):
		require.Fail(t, "operation is not done")
	}

	_, err := o.Result()
	require.True(t, errors.Is(err, errors.Timeout))
	require.Equal(t, StatusFailed, o.Status())
}

package session

import (
	"context"
	"sync"
	"time"

	"boscoin.io/devote/lib/ballot"
	"boscoin.io/devote/lib/ledger"
)

// Result is the outcome of a confirmed write: its receipt and the snapshot
// refreshed after it.
type Result struct {
	Receipt  ledger.Receipt  `json:"receipt"`
	Snapshot ballot.Snapshot `json:"snapshot"`
}

type Status uint

const (
	StatusPending Status = iota
	StatusSuccess
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return ""
	}
}

// Operation is a write running in the background. Callers poll `Status`
// or wait on `Done`; giving up waiting does not stop the write.
type Operation struct {
	sync.RWMutex

	done   chan struct{}
	status Status
	result Result
	err    error
}

// Go runs `f` detached from any caller context. `f` gets a context bounded
// by `timeout`.
func Go(timeout time.Duration, f func(context.Context) (Result, error)) *Operation {
	o := &Operation{done: make(chan struct{})}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		result, err := f(ctx)

		o.Lock()
		o.result, o.err = result, err
		if err != nil {
			o.status = StatusFailed
		} else {
			o.status = StatusSuccess
		}
		o.Unlock()

		close(o.done)
	}()

	return o
}

func (o *Operation) Status() Status {
	o.RLock()
	defer o.RUnlock()

	return o.status
}

func (o *Operation) Done() <-chan struct{} {
	return o.done
}

// Result returns the outcome; it is only meaningful once `Done` is
// closed.
func (o *Operation) Result() (Result, error) {
	o.RLock()
	defer o.RUnlock()

	return o.result, o.err
}

// Wait blocks until the operation finishes or `ctx` is done. When `ctx`
// is done first, the error is `ctx.Err()` and the operation keeps running.
func (o *Operation) Wait(ctx context.Context) (Result, error) {
	select {
	case <-o.done:
		return o.Result()
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

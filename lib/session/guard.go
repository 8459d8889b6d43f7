package session

import (
	"sync"

	"boscoin.io/devote/lib/ballot"
	"boscoin.io/devote/lib/errors"
)

// Guard allows one in-flight write per signing identity. A second write
// is refused instead of queued.
type Guard struct {
	sync.Mutex
	inflight map[string]ballot.OperationType
}

func NewGuard() *Guard {
	return &Guard{inflight: map[string]ballot.OperationType{}}
}

// Acquire marks `address` busy with `op`. The returned function releases
// it; it fails with `errors.OperationInProgress` when `address` is busy.
func (g *Guard) Acquire(address string, op ballot.OperationType) (func(), error) {
	g.Lock()
	defer g.Unlock()

	if current, found := g.inflight[address]; found {
		return nil, errors.OperationInProgress.Clone().
			SetData("address", address).
			SetData("inflight", current).
			SetData("operation", op)
	}
	g.inflight[address] = op

	var once sync.Once
	return func() {
		once.Do(func() {
			g.Lock()
			defer g.Unlock()
			delete(g.inflight, address)
		})
	}, nil
}

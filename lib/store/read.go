package store

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"boscoin.io/devote/lib/ballot"
	"boscoin.io/devote/lib/errors"
	"boscoin.io/devote/lib/ledger"
)

// heights collects the ledger height of every read of one refresh.
type heights struct {
	sync.Mutex
	seen map[uint64][]string
}

func (h *heights) add(query string, height uint64) {
	h.Lock()
	defer h.Unlock()

	h.seen[height] = append(h.seen[height], query)
}

// addNotFound adds the height of a `errors.NotFound` answer. A ledger which
// does not tell the height of its `NotFound` answers leaves them unchecked.
func (h *heights) addNotFound(query string, err error) {
	if height, found := ledger.NotFoundHeight(err); found {
		h.add(query, height)
	}
}

// read runs every query of a refresh concurrently and assembles them into
// one snapshot. The reads must agree on the ledger height, otherwise a
// write landed between them and the result fails with
// `errors.InconsistentRead`.
func (s *Store) read(ctx context.Context) (n ballot.Snapshot, err error) {
	n = ballot.NewEmptySnapshot()

	var (
		b         ledger.BallotState
		c         ledger.ChoicesState
		vc        ledger.VoterCountState
		uncreated bool
		voters    sync.Map
	)
	h := &heights{seen: map[uint64][]string{}}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := s.reader.ReadState(gctx, ballot.QueryBallot, nil, &b)
		if errors.Is(err, errors.NotFound) {
			uncreated = true
			h.addNotFound(ballot.QueryBallot, err)
			return nil
		} else if err != nil {
			return err
		}
		h.add(ballot.QueryBallot, b.Height)
		return nil
	})

	g.Go(func() error {
		err := s.reader.ReadState(gctx, ballot.QueryChoices, nil, &c)
		if errors.Is(err, errors.NotFound) {
			h.addNotFound(ballot.QueryChoices, err)
			return nil
		} else if err != nil {
			return err
		}
		h.add(ballot.QueryChoices, c.Height)
		return nil
	})

	g.Go(func() error {
		err := s.reader.ReadState(gctx, ballot.QueryVoterCount, nil, &vc)
		if errors.Is(err, errors.NotFound) {
			h.addNotFound(ballot.QueryVoterCount, err)
			return nil
		} else if err != nil {
			return err
		}
		h.add(ballot.QueryVoterCount, vc.Height)
		return nil
	})

	for _, address := range s.trackedVoters() {
		address := address
		g.Go(func() error {
			record, height, found, err := s.readVoter(gctx, address)
			if err != nil {
				return err
			}
			if found {
				h.add(ballot.QueryVoter, height)
			}
			voters.Store(address, record)
			return nil
		})
	}

	if err = g.Wait(); err != nil {
		return
	}

	if len(h.seen) > 1 {
		err = errors.InconsistentRead.Clone().SetData("heights", h.seen)
		return
	}
	for height := range h.seen {
		n.Height = height
	}

	if !uncreated {
		n.Ballot = b.Ballot()
	}
	if n.Ballot.Phase != ballot.PhaseUncreated {
		n.Choices = append(n.Choices, c.Choices...)
		n.TotalVoters = vc.TotalVoters
	}
	voters.Range(func(k, v interface{}) bool {
		n.Voters[k.(string)] = v.(ballot.VoterRecord)
		return true
	})

	if err = checkSnapshot(n); err != nil {
		return
	}

	return
}

// checkSnapshot checks the invariants of a snapshot read from the ledger.
func checkSnapshot(n ballot.Snapshot) error {
	if !n.Ballot.Phase.IsValid() {
		return errors.InconsistentRead.Clone().SetData("reason", "unknown phase")
	}
	if (n.Ballot.Phase == ballot.PhaseUncreated) != (len(n.Ballot.Creator) < 1) {
		return errors.InconsistentRead.Clone().SetData("reason", "creator is set if and only if the ballot is created")
	}

	return nil
}

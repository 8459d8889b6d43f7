// Package store keeps the last known snapshot of the ballot on the ledger.
//
// The snapshot is replaced wholesale by `Refresh`, the only writer; every
// other method is a read of the current snapshot and never touches the
// network, except `QueryVoter`.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/GianlucaGuarini/go-observable"

	"boscoin.io/devote/lib/ballot"
	"boscoin.io/devote/lib/common"
	"boscoin.io/devote/lib/common/observer"
	"boscoin.io/devote/lib/errors"
	"boscoin.io/devote/lib/ledger"
	"boscoin.io/devote/lib/metrics"
)

var (
	// EventSnapshot is triggered with the new `ballot.Snapshot` after every
	// replacement.
	EventSnapshot = observer.NewEvent(observer.ResourceSnapshot, observer.ConditionAll, "").String()
)

// EventPhase is triggered with the new `ballot.Snapshot` when a
// replacement moves the ballot into `phase`.
func EventPhase(phase ballot.Phase) string {
	return observer.NewEvent(observer.ResourceSnapshot, observer.ConditionPhase, phase.String()).String()
}

type Store struct {
	sync.RWMutex

	// refreshLock keeps a single refresh running at a time
	refreshLock sync.Mutex

	reader   ledger.Reader
	config   common.Config
	snapshot ballot.Snapshot
	tracked  map[string]bool
	observer *observable.Observable

	// refreshed is the local time the snapshot was replaced
	refreshed time.Time
}

// New fails with `errors.InvalidConfig` when `config` does not validate; a
// store without refresh attempts would never read the ledger.
func New(reader ledger.Reader, config common.Config) (*Store, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Store{
		reader:   reader,
		config:   config,
		snapshot: ballot.NewEmptySnapshot(),
		tracked:  map[string]bool{},
		observer: observable.New(),
	}, nil
}

// Observer returns the observable triggered with `EventSnapshot` and
// `EventPhase`.
func (s *Store) Observer() *observable.Observable {
	return s.observer
}

func (s *Store) Snapshot() ballot.Snapshot {
	s.RLock()
	defer s.RUnlock()

	return s.snapshot.Copy()
}

func (s *Store) CurrentPhase() ballot.Phase {
	s.RLock()
	defer s.RUnlock()

	return s.snapshot.Ballot.Phase
}

func (s *Store) CurrentBallot() ballot.Ballot {
	s.RLock()
	defer s.RUnlock()

	return s.snapshot.Ballot
}

func (s *Store) CurrentChoices() []ballot.Choice {
	s.RLock()
	defer s.RUnlock()

	return s.snapshot.CopyChoices()
}

func (s *Store) TotalVoters() uint64 {
	s.RLock()
	defer s.RUnlock()

	return s.snapshot.TotalVoters
}

func (s *Store) TotalVotes() uint64 {
	s.RLock()
	defer s.RUnlock()

	return s.snapshot.TotalVotes()
}

// RefreshedAt is the local time of the last replacement; zero before the
// first refresh.
func (s *Store) RefreshedAt() time.Time {
	s.RLock()
	defer s.RUnlock()

	return s.refreshed
}

func (s *Store) Height() uint64 {
	s.RLock()
	defer s.RUnlock()

	return s.snapshot.Height
}

// LookupVoter returns the cached record of `address`. `errors.NotFound`
// means the voter was never read, not that it is unregistered; use
// `QueryVoter` to ask the ledger.
func (s *Store) LookupVoter(address string) (ballot.VoterRecord, error) {
	s.RLock()
	defer s.RUnlock()

	record, found := s.snapshot.Voters[address]
	if !found {
		return ballot.VoterRecord{}, errors.NotFound.Clone().SetData("address", address)
	}

	return record, nil
}

// Track adds voters to be read by every following refresh.
func (s *Store) Track(addresses ...string) {
	s.Lock()
	defer s.Unlock()

	for _, address := range addresses {
		if len(address) > 0 {
			s.tracked[address] = true
		}
	}
}

func (s *Store) trackedVoters() []string {
	s.RLock()
	defer s.RUnlock()

	return common.SortedKeys(s.tracked)
}

// QueryVoter reads the record of `address` from the ledger. The snapshot
// is not modified; the voter is tracked, so the next refresh caches it.
func (s *Store) QueryVoter(ctx context.Context, address string) (ballot.VoterRecord, error) {
	s.Track(address)

	record, _, _, err := s.readVoter(ctx, address)

	return record, err
}

// readVoter returns the voter record with the ledger height it was read
// at; `hasHeight` is false for a `errors.NotFound` answer without height.
func (s *Store) readVoter(ctx context.Context, address string) (
	record ballot.VoterRecord,
	height uint64,
	hasHeight bool,
	err error,
) {
	var v ledger.VoterState
	err = s.reader.ReadState(ctx, ballot.QueryVoter, ledger.Args{ledger.ArgAddress: address}, &v)
	if errors.Is(err, errors.NotFound) {
		// unknown to the ledger is unregistered
		height, hasHeight = ledger.NotFoundHeight(err)
		return ballot.VoterRecord{Address: address}, height, hasHeight, nil
	} else if err != nil {
		return
	}

	record = v.Record()
	record.Address = address
	if !record.IsWellFormed() {
		err = errors.InconsistentRead.Clone().SetData("address", address).SetData("reason", "voted without registration")
		return
	}

	return record, v.Height, true, nil
}

// Refresh reads the whole ballot from the ledger and replaces the
// snapshot. Until the new snapshot is complete the old one stays current.
// A refresh which would regress the snapshot fails with
// `errors.StaleSnapshot` and keeps the old one.
func (s *Store) Refresh(ctx context.Context) (err error) {
	s.refreshLock.Lock()
	defer s.refreshLock.Unlock()

	started := time.Now()
	defer func() {
		status := metrics.StatusSuccess
		if err != nil {
			status = metrics.StatusFailure
		}
		metrics.Ballot.RefreshesTotal.With("status", status).Add(1)
		metrics.Ballot.RefreshDurationSeconds.With("status", status).Observe(time.Since(started).Seconds())
	}()

	var n ballot.Snapshot
	for i := 0; i < s.config.RefreshAttempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return errors.Timeout.Wrap(ctx.Err())
			case <-time.After(s.config.RefreshInterval):
			}
		}

		if n, err = s.read(ctx); !errors.Is(err, errors.InconsistentRead) {
			break
		}
		log.Debug("reads disagree; retrying", "attempt", i+1, "error", err)
	}
	if err != nil {
		return
	}

	return s.replace(n)
}

// RefreshUntil refreshes until the snapshot reaches `height`, like the
// height of a receipt.
func (s *Store) RefreshUntil(ctx context.Context, height uint64) (err error) {
	for i := 0; i < s.config.RefreshAttempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return errors.Timeout.Wrap(ctx.Err())
			case <-time.After(s.config.RefreshInterval):
			}
		}

		err = s.Refresh(ctx)
		if err == nil && s.Height() >= height {
			return nil
		} else if err != nil && !errors.Is(err, errors.StaleSnapshot) {
			return
		}
	}

	if err == nil {
		err = errors.StaleSnapshot.Clone().
			SetData("expected", height).
			SetData("height", s.Height())
	}

	return
}

func (s *Store) replace(n ballot.Snapshot) error {
	s.Lock()
	old := s.snapshot
	if reason, regressed := old.Regresses(n); regressed {
		s.Unlock()
		log.Debug("discard stale snapshot", "reason", reason, "height", n.Height, "current", old.Height)

		return errors.StaleSnapshot.Clone().
			SetData("reason", reason).
			SetData("height", n.Height).
			SetData("current", old.Height)
	}
	s.snapshot = n
	s.refreshed = time.Now()
	s.Unlock()

	metrics.Ballot.Height.Set(float64(n.Height))
	metrics.Ballot.Phase.Set(float64(n.Ballot.Phase))

	log.Debug(
		"snapshot replaced",
		"height", n.Height,
		"phase", n.Ballot.Phase,
		"choices", len(n.Choices),
		"voters", len(n.Voters),
	)

	s.observer.Trigger(EventSnapshot, n.Copy())
	if n.Ballot.Phase != old.Ballot.Phase {
		s.observer.Trigger(EventPhase(n.Ballot.Phase), n.Copy())
	}

	return nil
}

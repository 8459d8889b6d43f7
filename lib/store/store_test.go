package store

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"boscoin.io/devote/lib/ballot"
	"boscoin.io/devote/lib/common"
	"boscoin.io/devote/lib/errors"
	"boscoin.io/devote/lib/ledger"
)

type testReader struct {
	sync.Mutex

	height  uint64
	ballot  ledger.BallotState
	choices []ballot.Choice
	total   uint64
	voters  map[string]ledger.VoterState

	errs map[string]error
	// heights overrides the height answered for a query
	heights map[string]uint64
	reads   map[string]int
	// block makes ballot reads wait until it is closed
	block chan struct{}
}

func newTestReader() *testReader {
	return &testReader{
		height: 5,
		ballot: ledger.BallotState{
			Name:     "lunch",
			Proposal: "what to eat",
			Creator:  "GCREATOR",
			Phase:    ballot.PhaseVotingOpen,
		},
		choices: []ballot.Choice{{Label: "A", VoteCount: 1}, {Label: "B"}},
		total:   2,
		voters: map[string]ledger.VoterState{
			"GX": {Address: "GX", Registered: true, HasVoted: true},
			"GY": {Address: "GY", Registered: true},
		},
		errs:    map[string]error{},
		heights: map[string]uint64{},
		reads:   map[string]int{},
	}
}

func (r *testReader) set(f func(*testReader)) {
	r.Lock()
	defer r.Unlock()
	f(r)
}

func (r *testReader) count(query string) int {
	r.Lock()
	defer r.Unlock()
	return r.reads[query]
}

func (r *testReader) ReadState(ctx context.Context, query string, args ledger.Args, v interface{}) error {
	r.Lock()
	block := r.block
	r.Unlock()
	if block != nil && query == ballot.QueryBallot {
		select {
		case <-block:
		case <-ctx.Done():
			return errors.Timeout.Wrap(ctx.Err())
		}
	}

	r.Lock()
	defer r.Unlock()

	r.reads[query]++
	if err := r.errs[query]; err != nil {
		return err
	}

	height := r.height
	if h, found := r.heights[query]; found {
		height = h
	}

	var value interface{}
	switch query {
	case ballot.QueryBallot:
		b := r.ballot
		b.Height = height
		value = b
	case ballot.QueryChoices:
		value = ledger.ChoicesState{Choices: r.choices, Height: height}
	case ballot.QueryVoterCount:
		value = ledger.VoterCountState{TotalVoters: r.total, Height: height}
	case ballot.QueryVoter:
		voter, found := r.voters[args[ledger.ArgAddress]]
		if !found {
			return errors.NotFound.Clone().SetData(ledger.DataHeight, height)
		}
		voter.Height = height
		value = voter
	default:
		return errors.InvalidQuery.Clone()
	}

	b, _ := json.Marshal(value)
	return json.Unmarshal(b, v)
}

func newTestStore() (*Store, *testReader) {
	reader := newTestReader()
	st, err := New(reader, common.NewTestConfig())
	if err != nil {
		panic(err)
	}

	return st, reader
}

func TestStoreNewInvalidConfig(t *testing.T) {
	reader := newTestReader()

	config := common.NewTestConfig()
	config.RefreshAttempts = 0
	_, err := New(reader, config)
	require.True(t, errors.Is(err, errors.InvalidConfig))

	_, err = New(reader, common.Config{})
	require.True(t, errors.Is(err, errors.InvalidConfig))
	require.Equal(t, 0, reader.count(ballot.QueryBallot))
}

func TestStoreEmpty(t *testing.T) {
	st, _ := newTestStore()

	require.Equal(t, ballot.PhaseUncreated, st.CurrentPhase())
	require.Empty(t, st.CurrentChoices())
	require.Equal(t, ballot.Ballot{}, st.CurrentBallot())
	require.Equal(t, uint64(0), st.TotalVoters())
	require.True(t, st.RefreshedAt().IsZero())

	_, err := st.LookupVoter("GX")
	require.True(t, errors.Is(err, errors.NotFound))
}

func TestStoreRefresh(t *testing.T) {
	st, _ := newTestStore()
	st.Track("GX")

	require.NoError(t, st.Refresh(context.Background()))

	require.Equal(t, ballot.PhaseVotingOpen, st.CurrentPhase())
	require.Equal(t, "GCREATOR", st.CurrentBallot().Creator)
	require.Equal(t, []ballot.Choice{{Label: "A", VoteCount: 1}, {Label: "B"}}, st.CurrentChoices())
	require.Equal(t, uint64(2), st.TotalVoters())
	require.Equal(t, uint64(1), st.TotalVotes())
	require.Equal(t, uint64(5), st.Height())

	record, err := st.LookupVoter("GX")
	require.NoError(t, err)
	require.True(t, record.Registered)
	require.True(t, record.HasVoted)

	// not tracked
	_, err = st.LookupVoter("GY")
	require.True(t, errors.Is(err, errors.NotFound))
}

func TestStoreRefreshIdempotent(t *testing.T) {
	st, _ := newTestStore()
	st.Track("GX", "GY")

	require.NoError(t, st.Refresh(context.Background()))
	first := st.Snapshot()

	require.NoError(t, st.Refresh(context.Background()))
	require.Equal(t, first, st.Snapshot())
}

func TestStoreSnapshotIsCopy(t *testing.T) {
	st, _ := newTestStore()
	require.NoError(t, st.Refresh(context.Background()))

	choices := st.CurrentChoices()
	choices[0].VoteCount = 100

	snapshot := st.Snapshot()
	snapshot.Voters["GZ"] = ballot.VoterRecord{}

	require.Equal(t, uint64(1), st.CurrentChoices()[0].VoteCount)
	_, err := st.LookupVoter("GZ")
	require.True(t, errors.Is(err, errors.NotFound))
}

func TestStoreRefreshUncreated(t *testing.T) {
	st, reader := newTestStore()
	reader.set(func(r *testReader) {
		r.errs[ballot.QueryBallot] = errors.NotFound.Clone()
		r.errs[ballot.QueryChoices] = errors.NotFound.Clone()
		r.errs[ballot.QueryVoterCount] = errors.NotFound.Clone()
	})

	require.NoError(t, st.Refresh(context.Background()))
	require.Equal(t, ballot.PhaseUncreated, st.CurrentPhase())
	require.Empty(t, st.CurrentChoices())
}

func TestStoreRefreshInconsistentRead(t *testing.T) {
	st, reader := newTestStore()
	require.NoError(t, st.Refresh(context.Background()))
	before := st.Snapshot()

	reader.set(func(r *testReader) {
		r.height = 6
		r.heights[ballot.QueryChoices] = 7
	})

	err := st.Refresh(context.Background())
	require.True(t, errors.Is(err, errors.InconsistentRead))
	require.Equal(t, common.NewTestConfig().RefreshAttempts+1, reader.count(ballot.QueryChoices))
	require.Equal(t, before, st.Snapshot())

	// the reads agree again
	reader.set(func(r *testReader) {
		delete(r.heights, ballot.QueryChoices)
	})
	require.NoError(t, st.Refresh(context.Background()))
	require.Equal(t, uint64(6), st.Height())
}

func TestStoreRefreshNotFoundHeight(t *testing.T) {
	st, reader := newTestStore()
	st.Track("GZ")

	// the unknown voter is answered at another height
	reader.set(func(r *testReader) { r.heights[ballot.QueryVoter] = 7 })

	err := st.Refresh(context.Background())
	require.True(t, errors.Is(err, errors.InconsistentRead))
	require.Equal(t, uint64(0), st.Height())

	reader.set(func(r *testReader) { delete(r.heights, ballot.QueryVoter) })
	require.NoError(t, st.Refresh(context.Background()))
	require.Equal(t, uint64(5), st.Height())

	record, err := st.LookupVoter("GZ")
	require.NoError(t, err)
	require.Equal(t, ballot.VoterRecord{Address: "GZ"}, record)
}

func TestStoreRefreshStale(t *testing.T) {
	st, reader := newTestStore()
	require.NoError(t, st.Refresh(context.Background()))
	refreshed := st.RefreshedAt()
	require.False(t, refreshed.IsZero())

	{ // lower height
		reader.set(func(r *testReader) { r.height = 4 })
		err := st.Refresh(context.Background())
		require.True(t, errors.Is(err, errors.StaleSnapshot))
		require.Equal(t, uint64(5), st.Height())
	}

	{ // phase moves backwards
		reader.set(func(r *testReader) {
			r.height = 6
			r.ballot.Phase = ballot.PhaseCreated
		})
		err := st.Refresh(context.Background())
		require.True(t, errors.Is(err, errors.StaleSnapshot))
		require.Equal(t, ballot.PhaseVotingOpen, st.CurrentPhase())
	}

	// a discarded snapshot keeps the refresh time
	require.Equal(t, refreshed, st.RefreshedAt())
}

func TestStoreRefreshNetworkError(t *testing.T) {
	st, reader := newTestStore()
	require.NoError(t, st.Refresh(context.Background()))
	before := st.Snapshot()

	reader.set(func(r *testReader) {
		r.height = 6
		r.errs[ballot.QueryVoterCount] = errors.Network.Clone()
	})

	err := st.Refresh(context.Background())
	require.True(t, errors.Is(err, errors.Network))
	require.Equal(t, before, st.Snapshot())
}

func TestStoreRefreshInvalidVoter(t *testing.T) {
	st, reader := newTestStore()
	st.Track("GBAD")
	reader.set(func(r *testReader) {
		r.voters["GBAD"] = ledger.VoterState{Address: "GBAD", HasVoted: true}
	})

	err := st.Refresh(context.Background())
	require.True(t, errors.Is(err, errors.InconsistentRead))
}

func TestStoreQueryVoter(t *testing.T) {
	st, _ := newTestStore()
	require.NoError(t, st.Refresh(context.Background()))

	_, err := st.LookupVoter("GY")
	require.True(t, errors.Is(err, errors.NotFound))

	record, err := st.QueryVoter(context.Background(), "GY")
	require.NoError(t, err)
	require.Equal(t, ballot.VoterRecord{Address: "GY", Registered: true}, record)

	// the snapshot is not modified by the query
	_, err = st.LookupVoter("GY")
	require.True(t, errors.Is(err, errors.NotFound))

	// but the next refresh reads it
	require.NoError(t, st.Refresh(context.Background()))
	cached, err := st.LookupVoter("GY")
	require.NoError(t, err)
	require.Equal(t, record, cached)
}

func TestStoreQueryVoterUnknown(t *testing.T) {
	st, _ := newTestStore()

	record, err := st.QueryVoter(context.Background(), "GUNKNOWN")
	require.NoError(t, err)
	require.Equal(t, ballot.VoterRecord{Address: "GUNKNOWN"}, record)
}

func TestStoreReadDuringRefresh(t *testing.T) {
	st, reader := newTestStore()
	require.NoError(t, st.Refresh(context.Background()))
	before := st.Snapshot()

	block := make(chan struct{})
	reader.set(func(r *testReader) {
		r.block = block
		r.height = 6
		r.ballot.Phase = ballot.PhaseVotingClosed
		r.choices = []ballot.Choice{{Label: "A", VoteCount: 2}, {Label: "B", VoteCount: 1}}
	})

	done := make(chan error)
	go func() {
		done <- st.Refresh(context.Background())
	}()

	// readers see the whole old snapshot while the refresh is waiting
	for i := 0; i < 10; i++ {
		require.Equal(t, before, st.Snapshot())
		time.Sleep(time.Millisecond)
	}

	close(block)
	require.NoError(t, <-done)

	after := st.Snapshot()
	require.Equal(t, ballot.PhaseVotingClosed, after.Ballot.Phase)
	require.Equal(t, uint64(3), after.TotalVotes())
	require.Equal(t, uint64(6), after.Height)
}

func TestStoreRefreshUntil(t *testing.T) {
	st, _ := newTestStore()

	require.NoError(t, st.RefreshUntil(context.Background(), 5))
	require.Equal(t, uint64(5), st.Height())

	err := st.RefreshUntil(context.Background(), 100)
	require.True(t, errors.Is(err, errors.StaleSnapshot))
}

func TestStoreEvents(t *testing.T) {
	st, reader := newTestStore()
	reader.set(func(r *testReader) { r.ballot.Phase = ballot.PhaseCreated })

	snapshots := make(chan ballot.Snapshot, 10)
	phases := make(chan ballot.Snapshot, 10)

	onSnapshot := func(args ...interface{}) {
		snapshots <- args[0].(ballot.Snapshot)
	}
	onPhase := func(args ...interface{}) {
		phases <- args[0].(ballot.Snapshot)
	}
	st.Observer().On(EventSnapshot, onSnapshot)
	st.Observer().On(EventPhase(ballot.PhaseVotingOpen), onPhase)

	waitSnapshot := func(c chan ballot.Snapshot) ballot.Snapshot {
		select {
		case s := <-c:
			return s
		case <-time.After(time.Second):
			t.Fatal("event was not triggered")
		}
		return ballot.Snapshot{}
	}

	require.NoError(t, st.Refresh(context.Background()))
	require.Equal(t, ballot.PhaseCreated, waitSnapshot(snapshots).Ballot.Phase)

	reader.set(func(r *testReader) {
		r.height = 6
		r.ballot.Phase = ballot.PhaseVotingOpen
	})
	require.NoError(t, st.Refresh(context.Background()))
	require.Equal(t, ballot.PhaseVotingOpen, waitSnapshot(snapshots).Ballot.Phase)
	require.Equal(t, uint64(6), waitSnapshot(phases).Height)
}

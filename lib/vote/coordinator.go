package vote

import (
	"context"
	"sync"

	"boscoin.io/devote/lib/ballot"
	"boscoin.io/devote/lib/errors"
	"boscoin.io/devote/lib/identity"
	"boscoin.io/devote/lib/session"
	"boscoin.io/devote/lib/store"
)

// Coordinator casts votes. It remembers every voter seen with the voted
// flag, so a vote once recorded is never cast again even when a later
// read is stale.
type Coordinator struct {
	sync.RWMutex

	submitter  *session.Submitter
	verifier   identity.Verifier
	voted      map[string]bool
	onSnapshot func(...interface{})
}

func NewCoordinator(submitter *session.Submitter) *Coordinator {
	c := &Coordinator{
		submitter: submitter,
		voted:     map[string]bool{},
	}
	c.onSnapshot = func(args ...interface{}) {
		if len(args) < 1 {
			return
		}
		if snapshot, ok := args[0].(ballot.Snapshot); ok {
			c.latch(snapshot)
		}
	}
	c.Store().Observer().On(store.EventSnapshot, c.onSnapshot)

	return c
}

// SetVerifier makes every vote verify the voter first. Without verifier
// any signer of a registered address may vote.
func (c *Coordinator) SetVerifier(verifier identity.Verifier) *Coordinator {
	c.Lock()
	defer c.Unlock()

	c.verifier = verifier
	return c
}

func (c *Coordinator) verify(ctx context.Context, address string) error {
	c.RLock()
	verifier := c.verifier
	c.RUnlock()

	if verifier == nil {
		return nil
	}

	return verifier.Verify(ctx, address)
}

// Close stops following the store.
func (c *Coordinator) Close() {
	c.Store().Observer().Off(store.EventSnapshot, c.onSnapshot)
}

func (c *Coordinator) Store() *store.Store {
	return c.submitter.Store()
}

func (c *Coordinator) HasVoted(address string) bool {
	c.RLock()
	defer c.RUnlock()

	return c.voted[address]
}

func (c *Coordinator) latch(snapshot ballot.Snapshot) {
	c.Lock()
	defer c.Unlock()

	for address, record := range snapshot.Voters {
		if record.HasVoted {
			c.voted[address] = true
		}
	}
}

func (c *Coordinator) markVoted(address string) {
	c.Lock()
	defer c.Unlock()

	c.voted[address] = true
}

// CastVote casts the vote of `voter` for the choice at `choice`. The
// eligibility of the voter is read from the ledger when the snapshot does
// not know it yet.
func (c *Coordinator) CastVote(ctx context.Context, voter identity.Signer, choice int) (result session.Result, err error) {
	address := voter.Address()
	c.Store().Track(address)

	if err = c.verify(ctx, address); err != nil {
		log.Debug("voter is not verified", "voter", address, "error", err)
		return
	}

	precheck := func(ctx context.Context, snapshot ballot.Snapshot) error {
		return c.check(ctx, snapshot, address, choice)
	}

	result, err = c.submitter.Submit(ctx, voter, ballot.OperationVote, ballot.VoteArgs{Choice: uint64(choice)}, precheck)
	if err != nil {
		if errors.Is(err, errors.Rejected) && c.voterHasVoted(address) {
			c.markVoted(address)
		}
		log.Debug("vote failed", "voter", address, "choice", choice, "error", err)
		return
	}

	c.latch(result.Snapshot)
	log.Info("vote cast", "voter", address, "choice", choice, "total-votes", result.Snapshot.TotalVotes())

	return
}

func (c *Coordinator) voterHasVoted(address string) bool {
	record, err := c.Store().LookupVoter(address)
	return err == nil && record.HasVoted
}

func (c *Coordinator) check(ctx context.Context, snapshot ballot.Snapshot, address string, choice int) error {
	if phase := snapshot.Ballot.Phase; phase != ballot.PhaseVotingOpen {
		return errors.InvalidTransition.Clone().
			SetData("phase", phase).
			SetData("operation", ballot.OperationVote).
			SetData("required", ballot.PhaseVotingOpen)
	}

	if c.HasVoted(address) {
		return errors.AlreadyVoted.Clone().SetData("address", address)
	}

	record, err := c.Store().QueryVoter(ctx, address)
	if err != nil {
		return err
	}
	if !record.Registered {
		return errors.NotEligible.Clone().SetData("address", address)
	}
	if record.HasVoted {
		c.markVoted(address)
		return errors.AlreadyVoted.Clone().SetData("address", address)
	}

	if choice < 0 || choice >= len(snapshot.Choices) {
		return errors.InvalidChoice.Clone().
			SetData("choice", choice).
			SetData("choices", len(snapshot.Choices))
	}

	return nil
}

// Go casts the vote in the background, bounded by the submit timeout.
func (c *Coordinator) Go(voter identity.Signer, choice int) *session.Operation {
	return session.Go(c.submitter.Config().SubmitTimeout, func(ctx context.Context) (session.Result, error) {
		return c.CastVote(ctx, voter, choice)
	})
}

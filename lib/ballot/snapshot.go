package ballot

// Snapshot is a point-in-time view of the ballot on the ledger. A Snapshot
// is never modified after it is assembled; the accessors return copies.
type Snapshot struct {
	Ballot      Ballot                 `json:"ballot"`
	Choices     []Choice               `json:"choices"`
	Voters      map[string]VoterRecord `json:"voters"`
	TotalVoters uint64                 `json:"total_voters"`

	// Height is the ledger height the snapshot was read at.
	Height uint64 `json:"height"`
}

func NewEmptySnapshot() Snapshot {
	return Snapshot{
		Ballot:  Ballot{Phase: PhaseUncreated},
		Choices: []Choice{},
		Voters:  map[string]VoterRecord{},
	}
}

func (s Snapshot) Copy() Snapshot {
	n := s
	n.Choices = s.CopyChoices()
	n.Voters = make(map[string]VoterRecord, len(s.Voters))
	for k, v := range s.Voters {
		n.Voters[k] = v
	}

	return n
}

func (s Snapshot) CopyChoices() []Choice {
	choices := make([]Choice, len(s.Choices))
	copy(choices, s.Choices)

	return choices
}

func (s Snapshot) TotalVotes() (total uint64) {
	for _, c := range s.Choices {
		total += c.VoteCount
	}

	return
}

// Regresses reports whether `n` would move the ballot backwards from `s`:
// a lower height or phase, a different creator, a lowered tally or a
// voter losing its voted flag.
func (s Snapshot) Regresses(n Snapshot) (reason string, regressed bool) {
	switch {
	case n.Height < s.Height:
		return "height", true
	case n.Ballot.Phase.Before(s.Ballot.Phase):
		return "phase", true
	case s.Ballot.Phase != PhaseUncreated && n.Ballot.Creator != s.Ballot.Creator:
		return "creator", true
	}

	if len(n.Choices) == len(s.Choices) {
		for i := range s.Choices {
			if n.Choices[i].VoteCount < s.Choices[i].VoteCount {
				return "vote-count", true
			}
		}
	}

	for address, v := range s.Voters {
		if nv, found := n.Voters[address]; found && v.HasVoted && !nv.HasVoted {
			return "has-voted", true
		}
	}

	return "", false
}

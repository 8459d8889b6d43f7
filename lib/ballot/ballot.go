package ballot

// Ballot is the proposal under vote. Name, Proposal and Creator never
// change once the ballot is created.
type Ballot struct {
	Name     string `json:"name"`
	Proposal string `json:"proposal"`
	Creator  string `json:"creator,omitempty"`
	Phase    Phase  `json:"phase"`
}

func (b Ballot) IsCreator(address string) bool {
	return len(b.Creator) > 0 && b.Creator == address
}

type Choice struct {
	Label     string `json:"label"`
	VoteCount uint64 `json:"vote_count"`
}

type VoterRecord struct {
	Address    string `json:"address"`
	Registered bool   `json:"registered"`
	HasVoted   bool   `json:"has_voted"`
}

// IsWellFormed checks that a voter can not have voted without being
// registered.
func (v VoterRecord) IsWellFormed() bool {
	return !v.HasVoted || v.Registered
}

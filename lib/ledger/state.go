package ledger

import (
	"boscoin.io/devote/lib/ballot"
)

// The state values returned by `Reader.ReadState`. Every value carries the
// ledger height it was read at.

type AccountState struct {
	Address    string `json:"address"`
	SequenceID uint64 `json:"sequence_id"`
}

type BallotState struct {
	Name     string       `json:"name"`
	Proposal string       `json:"proposal"`
	Creator  string       `json:"creator"`
	Phase    ballot.Phase `json:"phase"`
	Height   uint64       `json:"height"`
}

func (b BallotState) Ballot() ballot.Ballot {
	return ballot.Ballot{
		Name:     b.Name,
		Proposal: b.Proposal,
		Creator:  b.Creator,
		Phase:    b.Phase,
	}
}

type ChoicesState struct {
	Choices []ballot.Choice `json:"choices"`
	Height  uint64          `json:"height"`
}

type VoterCountState struct {
	TotalVoters uint64 `json:"total_voters"`
	Height      uint64 `json:"height"`
}

type VoterState struct {
	Address    string `json:"address"`
	Registered bool   `json:"registered"`
	HasVoted   bool   `json:"has_voted"`
	Height     uint64 `json:"height"`
}

func (v VoterState) Record() ballot.VoterRecord {
	return ballot.VoterRecord{
		Address:    v.Address,
		Registered: v.Registered,
		HasVoted:   v.HasVoted,
	}
}

type TransactionStatus struct {
	Hash       string               `json:"hash"`
	Source     string               `json:"source,omitempty"`
	Operation  ballot.OperationType `json:"operation,omitempty"`
	SequenceID uint64               `json:"sequence_id,omitempty"`
	Status     string               `json:"status"`
	Height     uint64               `json:"height,omitempty"`
	Reason     string               `json:"reason,omitempty"`
}

func (s TransactionStatus) IsFinal() bool {
	return s.Status == StatusConfirmed || s.Status == StatusRejected
}

func (s TransactionStatus) Receipt() Receipt {
	return Receipt{
		Hash:       s.Hash,
		Signer:     s.Source,
		Operation:  s.Operation,
		SequenceID: s.SequenceID,
		Height:     s.Height,
		Status:     s.Status,
	}
}

package ballot

import (
	"strings"

	"github.com/stellar/go/keypair"

	"boscoin.io/devote/lib/common"
	"boscoin.io/devote/lib/errors"
)

type OperationType string

const (
	OperationCreate   OperationType = "create"
	OperationRegister OperationType = "register"
	OperationStart    OperationType = "start"
	OperationEnd      OperationType = "end"
	OperationVote     OperationType = "vote"
)

func (t OperationType) IsValid() bool {
	switch t {
	case OperationCreate, OperationRegister, OperationStart, OperationEnd, OperationVote:
		return true
	default:
		return false
	}
}

// RequiredPhase is the phase the ballot must be in for the operation to
// be applied.
func (t OperationType) RequiredPhase() Phase {
	switch t {
	case OperationCreate:
		return PhaseUncreated
	case OperationRegister, OperationStart:
		return PhaseCreated
	default:
		return PhaseVotingOpen
	}
}

// CreatorOnly reports whether only the ballot creator may sign the
// operation.
func (t OperationType) CreatorOnly() bool {
	switch t {
	case OperationRegister, OperationStart, OperationEnd:
		return true
	default:
		return false
	}
}

const (
	QueryBallot     = "ballot"
	QueryChoices    = "choices"
	QueryVoterCount = "voter-count"
	QueryVoter      = "voter"
	QueryAccount    = "account"
)

// BallotData is the immutable part of a ballot given at creation.
type BallotData struct {
	Name     string `json:"name"`
	Proposal string `json:"proposal"`
}

type CreateArgs struct {
	BallotData
	Choices []string `json:"choices"`
	Voters  []string `json:"voters,omitempty"`
}

func NewCreateArgs(data BallotData, choices, voters []string) CreateArgs {
	var labels []string
	for _, c := range choices {
		labels = append(labels, strings.TrimSpace(c))
	}

	return CreateArgs{
		BallotData: BallotData{
			Name:     strings.TrimSpace(data.Name),
			Proposal: strings.TrimSpace(data.Proposal),
		},
		Choices: labels,
		Voters:  common.UniqueStrings(voters),
	}
}

func (a CreateArgs) IsWellFormed() error {
	if len(a.Name) < 1 {
		return errors.InvalidBallotData.Clone().SetData("field", "name")
	}
	if len(a.Proposal) < 1 {
		return errors.InvalidBallotData.Clone().SetData("field", "proposal")
	}
	if len(a.Choices) < 1 {
		return errors.InvalidBallotData.Clone().SetData("field", "choices")
	}

	seen := map[string]bool{}
	for _, c := range a.Choices {
		if len(c) < 1 {
			return errors.InvalidBallotData.Clone().SetData("field", "choices").SetData("reason", "empty label")
		}
		if seen[c] {
			return errors.InvalidBallotData.Clone().SetData("field", "choices").SetData("duplicated", c)
		}
		seen[c] = true
	}

	return CheckAddresses(a.Voters)
}

type RegisterArgs struct {
	Voters []string `json:"voters"`
}

func (a RegisterArgs) IsWellFormed() error {
	if len(a.Voters) < 1 {
		return errors.InvalidBallotData.Clone().SetData("field", "voters")
	}

	return CheckAddresses(a.Voters)
}

type VoteArgs struct {
	Choice uint64 `json:"choice"`
}

func CheckAddresses(addresses []string) error {
	for _, address := range addresses {
		kp, err := keypair.Parse(address)
		if err != nil {
			return errors.BadPublicAddress.Wrap(err).SetData("address", address)
		}
		if _, ok := kp.(*keypair.FromAddress); !ok {
			return errors.BadPublicAddress.Clone().SetData("address", address)
		}
	}

	return nil
}

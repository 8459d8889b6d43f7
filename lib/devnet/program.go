package devnet

import (
	"fmt"

	"boscoin.io/devote/lib/ballot"
	"boscoin.io/devote/lib/common"
	"boscoin.io/devote/lib/errors"
	"boscoin.io/devote/lib/ledger"
	"boscoin.io/devote/lib/storage"
)

// ProgramChecker applies one transaction to the ballot program. The ledger
// enforces every rule on its own, whatever the submitting client checked
// before.
type ProgramChecker struct {
	common.DefaultChecker

	Storage     *storage.LevelDBBackend
	Transaction ledger.Transaction

	ballot BallotRecord
}

var ProgramCheckerFuncs = []common.CheckerFunc{
	CheckProgramLoadBallot,
	CheckProgramPhase,
	CheckProgramCreator,
	CheckProgramApply,
}

// ApplyTransaction runs the ballot program for tx against st. A
// `StorageCoreError` means the ledger itself failed; any other error is
// the rejection of tx.
func ApplyTransaction(st *storage.LevelDBBackend, tx ledger.Transaction) error {
	checker := &ProgramChecker{
		DefaultChecker: common.DefaultChecker{Funcs: ProgramCheckerFuncs},
		Storage:        st,
		Transaction:    tx,
	}

	return common.RunChecker(checker, common.DefaultDeferFunc)
}

func CheckProgramLoadBallot(c common.Checker, args ...interface{}) (err error) {
	checker := c.(*ProgramChecker)
	checker.ballot, err = GetBallotRecord(checker.Storage)

	return
}

func CheckProgramPhase(c common.Checker, args ...interface{}) (err error) {
	checker := c.(*ProgramChecker)
	op := checker.Transaction.B.Operation.Type

	if required := op.RequiredPhase(); checker.ballot.Phase != required {
		err = errors.InvalidTransition.Clone().
			SetData("phase", checker.ballot.Phase).
			SetData("operation", op).
			SetData("required", required)
		return
	}

	return
}

func CheckProgramCreator(c common.Checker, args ...interface{}) (err error) {
	checker := c.(*ProgramChecker)
	op := checker.Transaction.B.Operation.Type

	if op.CreatorOnly() && !checker.ballot.Ballot().IsCreator(checker.Transaction.Source()) {
		err = errors.InvalidTransition.Clone().
			SetData("phase", checker.ballot.Phase).
			SetData("operation", op).
			SetData("reason", "signer is not the ballot creator")
		return
	}

	return
}

func CheckProgramApply(c common.Checker, args ...interface{}) (err error) {
	checker := c.(*ProgramChecker)

	switch checker.Transaction.B.Operation.Type {
	case ballot.OperationCreate:
		return checker.create()
	case ballot.OperationRegister:
		return checker.register()
	case ballot.OperationStart, ballot.OperationEnd:
		// CheckProgramPhase already required the phase before
		return checker.advance()
	case ballot.OperationVote:
		return checker.vote()
	default:
		return errors.InvalidOperation.Clone().SetData("type", checker.Transaction.B.Operation.Type)
	}
}

func (c *ProgramChecker) create() (err error) {
	var a ballot.CreateArgs
	if err = c.Transaction.DecodeArgs(&a); err != nil {
		return
	}
	a = ballot.NewCreateArgs(a.BallotData, a.Choices, a.Voters)
	if err = a.IsWellFormed(); err != nil {
		return
	}

	record := BallotRecord{
		Name:     a.Name,
		Proposal: a.Proposal,
		Creator:  c.Transaction.Source(),
		Phase:    ballot.PhaseCreated,
	}
	for _, label := range a.Choices {
		record.Choices = append(record.Choices, ballot.Choice{Label: label})
	}

	if record.TotalVoters, err = c.registerVoters(a.Voters); err != nil {
		return
	}

	return PutBallotRecord(c.Storage, record)
}

func (c *ProgramChecker) register() (err error) {
	var a ballot.RegisterArgs
	if err = c.Transaction.DecodeArgs(&a); err != nil {
		return
	}
	a.Voters = common.UniqueStrings(a.Voters)
	if err = a.IsWellFormed(); err != nil {
		return
	}

	var added uint64
	if added, err = c.registerVoters(a.Voters); err != nil {
		return
	}

	c.ballot.TotalVoters += added

	return PutBallotRecord(c.Storage, c.ballot)
}

// registerVoters puts the unregistered ones of addresses on the roster and
// returns how many were added.
func (c *ProgramChecker) registerVoters(addresses []string) (added uint64, err error) {
	for _, address := range addresses {
		var record ballot.VoterRecord
		if record, err = GetVoterRecord(c.Storage, address); err != nil {
			return
		}
		if record.Registered {
			continue
		}

		record.Registered = true
		if err = PutVoterRecord(c.Storage, record); err != nil {
			return
		}
		added++
	}

	return
}

func (c *ProgramChecker) advance() error {
	c.ballot.Phase = c.ballot.Phase.Next()

	return PutBallotRecord(c.Storage, c.ballot)
}

func (c *ProgramChecker) vote() (err error) {
	var a ballot.VoteArgs
	if err = c.Transaction.DecodeArgs(&a); err != nil {
		return
	}

	source := c.Transaction.Source()

	var record ballot.VoterRecord
	if record, err = GetVoterRecord(c.Storage, source); err != nil {
		return
	}
	if !record.Registered {
		return errors.NotEligible.Clone().SetData("address", source)
	}
	if record.HasVoted {
		return errors.AlreadyVoted.Clone().SetData("address", source)
	}
	if a.Choice >= uint64(len(c.ballot.Choices)) {
		return errors.InvalidChoice.Clone().
			SetData("choice", a.Choice).
			SetData("choices", len(c.ballot.Choices))
	}

	c.ballot.Choices[a.Choice].VoteCount++
	record.HasVoted = true

	if err = PutVoterRecord(c.Storage, record); err != nil {
		return
	}

	return PutBallotRecord(c.Storage, c.ballot)
}

// rejectReason is the readable reason of a program rejection kept in the
// transaction status.
func rejectReason(err error) string {
	e, ok := errors.As(err)
	if !ok {
		return err.Error()
	}

	if reason, found := e.Data["reason"]; found {
		return fmt.Sprintf("%s: %v", e.Message, reason)
	}

	return e.Message
}

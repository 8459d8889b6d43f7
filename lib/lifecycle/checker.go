package lifecycle

import (
	"boscoin.io/devote/lib/ballot"
	"boscoin.io/devote/lib/common"
	"boscoin.io/devote/lib/errors"
)

// OperationChecker checks a lifecycle operation of `Identity` against
// `Snapshot` before it is submitted.
type OperationChecker struct {
	common.DefaultChecker

	Snapshot  ballot.Snapshot
	Identity  string
	Operation ballot.OperationType
	Args      interface{}
}

var OperationCheckerFuncs = []common.CheckerFunc{
	CheckRequiredPhase,
	CheckCreator,
	CheckArgs,
}

func CheckRequiredPhase(c common.Checker, args ...interface{}) (err error) {
	checker := c.(*OperationChecker)

	current := checker.Snapshot.Ballot.Phase
	if required := checker.Operation.RequiredPhase(); current != required {
		err = errors.InvalidTransition.Clone().
			SetData("phase", current).
			SetData("operation", checker.Operation).
			SetData("required", required)
		return
	}

	return
}

func CheckCreator(c common.Checker, args ...interface{}) (err error) {
	checker := c.(*OperationChecker)
	if !checker.Operation.CreatorOnly() {
		return
	}

	if !checker.Snapshot.Ballot.IsCreator(checker.Identity) {
		err = errors.InvalidTransition.Clone().
			SetData("phase", checker.Snapshot.Ballot.Phase).
			SetData("operation", checker.Operation).
			SetData("reason", "signer is not the ballot creator")
		return
	}

	return
}

type wellFormed interface {
	IsWellFormed() error
}

func CheckArgs(c common.Checker, args ...interface{}) (err error) {
	checker := c.(*OperationChecker)
	if a, ok := checker.Args.(wellFormed); ok {
		err = a.IsWellFormed()
	}

	return
}

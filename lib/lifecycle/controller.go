// Package lifecycle drives the ballot through its phases:
//
//	uncreated -> created -> voting-open -> voting-closed
//
// Every operation is checked against the latest snapshot before it is
// submitted, and fails locally with `errors.InvalidTransition` when the
// ballot is not in the phase the operation needs or the caller is not the
// creator. The ledger still checks everything on its own.
package lifecycle

import (
	"context"

	"boscoin.io/devote/lib/ballot"
	"boscoin.io/devote/lib/common"
	"boscoin.io/devote/lib/identity"
	"boscoin.io/devote/lib/session"
	"boscoin.io/devote/lib/store"
)

type Controller struct {
	submitter *session.Submitter
	provider  identity.Provider
}

func NewController(submitter *session.Submitter, provider identity.Provider) *Controller {
	return &Controller{
		submitter: submitter,
		provider:  provider,
	}
}

func (c *Controller) Store() *store.Store {
	return c.submitter.Store()
}

func (c *Controller) Refresh(ctx context.Context) error {
	return c.Store().Refresh(ctx)
}

// Create creates the ballot with the choices and the initial roster; the
// current identity becomes the creator.
func (c *Controller) Create(ctx context.Context, data ballot.BallotData, choices, voters []string) (session.Result, error) {
	return c.submit(ctx, ballot.OperationCreate, ballot.NewCreateArgs(data, choices, voters))
}

// RegisterVoters adds voters to the roster while the ballot is created
// and voting is not started yet.
func (c *Controller) RegisterVoters(ctx context.Context, voters []string) (session.Result, error) {
	return c.submit(ctx, ballot.OperationRegister, ballot.RegisterArgs{Voters: common.UniqueStrings(voters)})
}

func (c *Controller) StartVoting(ctx context.Context) (session.Result, error) {
	return c.submit(ctx, ballot.OperationStart, nil)
}

func (c *Controller) EndVoting(ctx context.Context) (session.Result, error) {
	return c.submit(ctx, ballot.OperationEnd, nil)
}

// Go runs one of the operations in the background, bounded by the submit
// timeout:
//
//	o := controller.Go(controller.StartVoting)
func (c *Controller) Go(f func(context.Context) (session.Result, error)) *session.Operation {
	return session.Go(c.submitter.Config().SubmitTimeout, f)
}

func (c *Controller) submit(ctx context.Context, op ballot.OperationType, args interface{}) (session.Result, error) {
	signer := c.provider.Signer()
	precheck := func(_ context.Context, snapshot ballot.Snapshot) error {
		checker := &OperationChecker{
			DefaultChecker: common.DefaultChecker{Funcs: OperationCheckerFuncs},
			Snapshot:       snapshot,
			Identity:       c.provider.CurrentIdentity(),
			Operation:      op,
			Args:           args,
		}

		return common.RunChecker(checker, common.DefaultDeferFunc)
	}

	result, err := c.submitter.Submit(ctx, signer, op, args, precheck)
	if err != nil {
		log.Debug("lifecycle operation failed", "operation", op, "identity", signer.Address(), "error", err)
		return result, err
	}

	return result, nil
}

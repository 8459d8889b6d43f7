package identity

import (
	"context"

	"boscoin.io/devote/lib/errors"
)

// Verifier confirms that the person casting a vote is the owner of the
// voter address, like a face match taken when the voter enrolled. It fails
// with `errors.NotVerified`; any other error is passed to the caller as is.
type Verifier interface {
	Verify(ctx context.Context, address string) error
}

type VerifierFunc func(ctx context.Context, address string) error

func (f VerifierFunc) Verify(ctx context.Context, address string) error {
	return f(ctx, address)
}

// Enrolled verifies the addresses enrolled beforehand, like the faces
// registered at a polling station terminal.
type Enrolled map[string]bool

func NewEnrolled(addresses ...string) Enrolled {
	e := Enrolled{}
	for _, address := range addresses {
		e[address] = true
	}

	return e
}

func (e Enrolled) Verify(_ context.Context, address string) error {
	if !e[address] {
		return errors.NotVerified.Clone().SetData("address", address)
	}

	return nil
}

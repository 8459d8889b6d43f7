// Package identity supplies the signing identity used to authorize ballot
// writes.
package identity

import (
	"boscoin.io/devote/lib/common/keypair"
	"boscoin.io/devote/lib/errors"
)

// Signer signs transaction hashes for an address.
type Signer interface {
	Address() string
	Sign([]byte) ([]byte, error)
}

// Provider supplies the identity of the current caller.
type Provider interface {
	CurrentIdentity() string
	Signer() Signer
}

// Keypair is a Provider backed by a secret seed.
type Keypair struct {
	kp *keypair.Full
}

func NewKeypair(kp *keypair.Full) *Keypair {
	return &Keypair{kp: kp}
}

func FromSeed(seed string) (*Keypair, error) {
	kp, err := keypair.ParseFull(seed)
	if err != nil {
		return nil, errors.BadPublicAddress.Wrap(err)
	}

	return NewKeypair(kp), nil
}

func (k *Keypair) CurrentIdentity() string {
	return k.kp.Address()
}

func (k *Keypair) Signer() Signer {
	return k.kp
}

func (k *Keypair) Address() string {
	return k.kp.Address()
}

func (k *Keypair) Sign(b []byte) ([]byte, error) {
	return k.kp.Sign(b)
}

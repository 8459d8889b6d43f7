//
// Encapsulate Stellar's keypair package
//
// Provides additional wrapper and convenience functions,
// suited for signing ballot transactions
//
package keypair

import (
	stellar "github.com/stellar/go/keypair"
)

// Aliases to stellar types
type Full = stellar.Full
type KP = stellar.KP

// Aliases to stellar functions
var Master = stellar.Master
var Parse = stellar.Parse
var RandomCanFail = stellar.Random

// SignatureBase is the message signed for a hash on a network.
func SignatureBase(networkID []byte, hash string) []byte {
	b := make([]byte, 0, len(networkID)+len(hash))
	b = append(b, networkID...)

	return append(b, []byte(hash)...)
}

// MakeSignature makes signature from given hash string
func MakeSignature(kp KP, networkID []byte, hash string) ([]byte, error) {
	return kp.Sign(SignatureBase(networkID, hash))
}

// VerifySignature checks the signature `MakeSignature` made for the
// given address.
func VerifySignature(address string, networkID []byte, hash string, signature []byte) error {
	kp, err := Parse(address)
	if err != nil {
		return err
	}

	return kp.Verify(SignatureBase(networkID, hash), signature)
}

// ParseFull parses a secret seed.
func ParseFull(seed string) (*Full, error) {
	kp, err := Parse(seed)
	if err != nil {
		return nil, err
	}

	full, ok := kp.(*Full)
	if !ok {
		return nil, stellar.ErrInvalidKey
	}

	return full, nil
}

package keypair

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignature(t *testing.T) {
	kp := Random()
	networkID := []byte("devote-unittest")

	sig, err := MakeSignature(kp, networkID, "findme")
	require.NoError(t, err)

	require.NoError(t, VerifySignature(kp.Address(), networkID, "findme", sig))
	require.Error(t, VerifySignature(kp.Address(), networkID, "killme", sig))
	require.Error(t, VerifySignature(kp.Address(), []byte("other-network"), "findme", sig))
	require.Error(t, VerifySignature(Random().Address(), networkID, "findme", sig))
	require.Error(t, VerifySignature("not-an-address", networkID, "findme", sig))
}

func TestParseFull(t *testing.T) {
	kp := Random()

	full, err := ParseFull(kp.Seed())
	require.NoError(t, err)
	require.Equal(t, kp.Address(), full.Address())

	_, err = ParseFull(kp.Address())
	require.Error(t, err)
}

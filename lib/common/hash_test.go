package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type hashableBody struct {
	Source     string
	SequenceID uint64
	Args       []byte
}

func TestMakeObjectHash(t *testing.T) {
	a := hashableBody{Source: "GABC", SequenceID: 1, Args: []byte(`{"choice":0}`)}
	b := a
	b.SequenceID = 2

	require.Equal(t, MustMakeObjectHash(a), MustMakeObjectHash(a))
	require.NotEqual(t, MustMakeObjectHash(a), MustMakeObjectHash(b))
	require.Len(t, MustMakeObjectHash(a), 32)
	require.NotEmpty(t, MustMakeObjectHashString(a))
}

func TestMakeObjectHashNotEncodable(t *testing.T) {
	// rlp can not encode signed integers
	_, err := MakeObjectHash(struct{ I int64 }{I: -1})
	require.Error(t, err)
}

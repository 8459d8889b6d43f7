package devnet

import (
	"boscoin.io/devote/lib/common"
)

// NewTestLedger opens an in memory ledger on the network id of
// `common.NewTestConfig`.
func NewTestLedger() *Ledger {
	l, err := OpenLedger("memory://", common.NewTestConfig().NetworkID)
	if err != nil {
		panic(err)
	}

	return l
}

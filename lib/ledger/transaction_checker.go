package ledger

import (
	"github.com/btcsuite/btcutil/base58"
	"github.com/stellar/go/keypair"

	"boscoin.io/devote/lib/common"
	commonkeypair "boscoin.io/devote/lib/common/keypair"
	"boscoin.io/devote/lib/errors"
)

type TransactionChecker struct {
	common.DefaultChecker

	NetworkID   []byte
	Transaction Transaction
}

func CheckTransactionVersion(c common.Checker, args ...interface{}) (err error) {
	checker := c.(*TransactionChecker)
	if checker.Transaction.H.Version != TransactionVersion {
		err = errors.InvalidTransaction.Clone().SetData("version", checker.Transaction.H.Version)
		return
	}

	return
}

func CheckTransactionSource(c common.Checker, args ...interface{}) (err error) {
	checker := c.(*TransactionChecker)
	var kp keypair.KP
	if kp, err = keypair.Parse(checker.Transaction.B.Source); err != nil {
		err = errors.BadPublicAddress.Wrap(err)
		return
	}
	if _, ok := kp.(*keypair.FromAddress); !ok {
		err = errors.BadPublicAddress.Clone().SetData("reason", "source must be an address")
		return
	}

	return
}

func CheckTransactionOperation(c common.Checker, args ...interface{}) (err error) {
	checker := c.(*TransactionChecker)
	if !checker.Transaction.B.Operation.Type.IsValid() {
		err = errors.InvalidOperation.Clone().SetData("type", checker.Transaction.B.Operation.Type)
		return
	}

	return
}

func CheckTransactionVerifySignature(c common.Checker, args ...interface{}) (err error) {
	checker := c.(*TransactionChecker)

	tx := checker.Transaction
	if tx.B.MakeHashString() != tx.H.Hash {
		err = errors.InvalidTransaction.Clone().SetData("reason", "hash mismatch")
		return
	}

	signature := base58.Decode(tx.H.Signature)
	if len(signature) < 1 {
		err = errors.InvalidSignature.Clone().SetData("reason", "empty signature")
		return
	}

	if err = commonkeypair.VerifySignature(tx.B.Source, checker.NetworkID, tx.H.Hash, signature); err != nil {
		err = errors.InvalidSignature.Wrap(err)
		return
	}

	return
}

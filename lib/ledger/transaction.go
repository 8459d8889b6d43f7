package ledger

import (
	"encoding/json"

	"github.com/btcsuite/btcutil/base58"

	"boscoin.io/devote/lib/ballot"
	"boscoin.io/devote/lib/common"
	"boscoin.io/devote/lib/common/keypair"
	"boscoin.io/devote/lib/errors"
	"boscoin.io/devote/lib/identity"
)

const TransactionVersion = "1"

type Transaction struct {
	T string
	H TransactionHeader
	B TransactionBody
}

type TransactionHeader struct {
	Version   string `json:"version"`
	Created   string `json:"created"`
	Hash      string `json:"hash"`
	Signature string `json:"signature"`
}

type TransactionBody struct {
	Source     string    `json:"source"`
	SequenceID uint64    `json:"sequence_id"`
	Operation  Operation `json:"operation"`
}

// Operation is one call into the ballot program. Args is the json encoded
// argument of the operation type.
type Operation struct {
	Type ballot.OperationType `json:"type"`
	Args json.RawMessage      `json:"args,omitempty"`
}

func (tb TransactionBody) MakeHash() []byte {
	return common.MustMakeObjectHash(tb)
}

func (tb TransactionBody) MakeHashString() string {
	return base58.Encode(tb.MakeHash())
}

func NewTransaction(source string, sequenceID uint64, opType ballot.OperationType, args interface{}) (tx Transaction, err error) {
	if !opType.IsValid() {
		err = errors.InvalidOperation.Clone().SetData("type", opType)
		return
	}

	var encoded []byte
	if args != nil {
		if encoded, err = json.Marshal(args); err != nil {
			err = errors.InvalidTransaction.Wrap(err)
			return
		}
	}

	txBody := TransactionBody{
		Source:     source,
		SequenceID: sequenceID,
		Operation:  Operation{Type: opType, Args: encoded},
	}

	tx = Transaction{
		T: "transaction",
		H: TransactionHeader{
			Version: TransactionVersion,
			Created: common.NowISO8601(),
			Hash:    txBody.MakeHashString(),
		},
		B: txBody,
	}

	return
}

var TransactionWellFormedCheckerFuncs = []common.CheckerFunc{
	CheckTransactionVersion,
	CheckTransactionSource,
	CheckTransactionOperation,
	CheckTransactionVerifySignature,
}

func (tx Transaction) IsWellFormed(networkID []byte) (err error) {
	checker := &TransactionChecker{
		DefaultChecker: common.DefaultChecker{Funcs: TransactionWellFormedCheckerFuncs},
		NetworkID:      networkID,
		Transaction:    tx,
	}
	if err = common.RunChecker(checker, common.DefaultDeferFunc); err != nil {
		return
	}

	return
}

func (tx Transaction) IsValidSequenceID(sequenceID uint64) bool {
	return tx.B.SequenceID == sequenceID
}

func (tx Transaction) GetHash() string {
	return tx.H.Hash
}

func (tx Transaction) Source() string {
	return tx.B.Source
}

// DecodeArgs decodes the operation arguments into v.
func (tx Transaction) DecodeArgs(v interface{}) error {
	if len(tx.B.Operation.Args) < 1 {
		return errors.InvalidTransaction.Clone().SetData("reason", "empty arguments")
	}
	if err := json.Unmarshal(tx.B.Operation.Args, v); err != nil {
		return errors.InvalidTransaction.Wrap(err)
	}

	return nil
}

func (tx Transaction) Serialize() (encoded []byte, err error) {
	encoded, err = json.Marshal(tx)
	return
}

func (tx Transaction) String() string {
	encoded, _ := json.MarshalIndent(tx, "", "  ")
	return string(encoded)
}

func (tx *Transaction) Sign(signer identity.Signer, networkID []byte) (err error) {
	if signer.Address() != tx.B.Source {
		return errors.InvalidSignature.Clone().SetData("reason", "signer is not the source")
	}

	tx.H.Hash = tx.B.MakeHashString()

	var signature []byte
	if signature, err = signer.Sign(keypair.SignatureBase(networkID, tx.H.Hash)); err != nil {
		return errors.InvalidSignature.Wrap(err)
	}
	tx.H.Signature = base58.Encode(signature)

	return
}

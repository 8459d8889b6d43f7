package devnet

import (
	"boscoin.io/devote/lib/ballot"
	"boscoin.io/devote/lib/errors"
	"boscoin.io/devote/lib/ledger"
	"boscoin.io/devote/lib/storage"
)

const (
	keyBallot        = "ballot"
	keyHeight        = "height"
	keyPrefixVoter   = "voter-"
	keyPrefixAccount = "account-"
	keyPrefixTx      = "tx-"
	keyPrefixTxBody  = "txbody-"
)

// BallotRecord is the ballot program state as it is stored.
type BallotRecord struct {
	Name        string          `json:"name"`
	Proposal    string          `json:"proposal"`
	Creator     string          `json:"creator"`
	Phase       ballot.Phase    `json:"phase"`
	Choices     []ballot.Choice `json:"choices"`
	TotalVoters uint64          `json:"total_voters"`
}

func (b BallotRecord) Ballot() ballot.Ballot {
	return ballot.Ballot{
		Name:     b.Name,
		Proposal: b.Proposal,
		Creator:  b.Creator,
		Phase:    b.Phase,
	}
}

func isNotExist(err error) bool {
	return errors.Is(err, errors.StorageRecordDoesNotExist)
}

// GetBallotRecord returns the stored ballot; an uncreated ballot when
// nothing was created yet.
func GetBallotRecord(st *storage.LevelDBBackend) (record BallotRecord, err error) {
	if err = st.Get(keyBallot, &record); isNotExist(err) {
		return BallotRecord{Phase: ballot.PhaseUncreated}, nil
	}

	return
}

func PutBallotRecord(st *storage.LevelDBBackend, record BallotRecord) error {
	return st.Put(keyBallot, record)
}

// GetVoterRecord returns the stored record of `address`; an unregistered
// record when the address is not on the roster.
func GetVoterRecord(st *storage.LevelDBBackend, address string) (record ballot.VoterRecord, err error) {
	if err = st.Get(keyPrefixVoter+address, &record); isNotExist(err) {
		return ballot.VoterRecord{Address: address}, nil
	}

	return
}

func PutVoterRecord(st *storage.LevelDBBackend, record ballot.VoterRecord) error {
	return st.Put(keyPrefixVoter+record.Address, record)
}

// GetAccount returns the account of `address`; accounts are created with
// sequence id 0 on first use.
func GetAccount(st *storage.LevelDBBackend, address string) (account ledger.AccountState, err error) {
	if err = st.Get(keyPrefixAccount+address, &account); isNotExist(err) {
		return ledger.AccountState{Address: address}, nil
	}

	return
}

func PutAccount(st *storage.LevelDBBackend, account ledger.AccountState) error {
	return st.Put(keyPrefixAccount+account.Address, account)
}

func GetTransactionStatus(st *storage.LevelDBBackend, hash string) (status ledger.TransactionStatus, err error) {
	if err = st.Get(keyPrefixTx+hash, &status); isNotExist(err) {
		err = errors.TransactionNotFound.Clone().SetData("hash", hash)
	}

	return
}

func PutTransactionStatus(st *storage.LevelDBBackend, status ledger.TransactionStatus) error {
	return st.Put(keyPrefixTx+status.Hash, status)
}

func GetHeight(st *storage.LevelDBBackend) (height uint64, err error) {
	if err = st.Get(keyHeight, &height); isNotExist(err) {
		return 0, nil
	}

	return
}

func PutHeight(st *storage.LevelDBBackend, height uint64) error {
	return st.Put(keyHeight, height)
}

func GetTransaction(st *storage.LevelDBBackend, hash string) (tx ledger.Transaction, err error) {
	if err = st.Get(keyPrefixTxBody+hash, &tx); isNotExist(err) {
		err = errors.TransactionNotFound.Clone().SetData("hash", hash)
	}

	return
}

func PutTransaction(st *storage.LevelDBBackend, tx ledger.Transaction) error {
	return st.Put(keyPrefixTxBody+tx.GetHash(), tx)
}

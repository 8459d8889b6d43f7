package devnet

import (
	"sync"

	"boscoin.io/devote/lib/ballot"
	"boscoin.io/devote/lib/common/observer"
	"boscoin.io/devote/lib/errors"
	"boscoin.io/devote/lib/ledger"
	"boscoin.io/devote/lib/metrics"
	"boscoin.io/devote/lib/storage"
)

// EventTransaction is triggered on `observer.TransactionObserver` with the
// final `ledger.TransactionStatus` of the transaction `hash`.
func EventTransaction(hash string) string {
	return observer.NewEvent(observer.ResourceTransaction, observer.ConditionTxHash, hash).String()
}

var EventTransactionAll = observer.NewEvent(observer.ResourceTransaction, observer.ConditionAll, "").String()

// Ledger is a single process ledger hosting the ballot program. Every
// accepted transaction is applied at once and moves the height by one.
type Ledger struct {
	sync.RWMutex

	storage   *storage.LevelDBBackend
	networkID []byte
}

func NewLedger(st *storage.LevelDBBackend, networkID []byte) *Ledger {
	return &Ledger{
		storage:   st,
		networkID: networkID,
	}
}

func (l *Ledger) NetworkID() []byte {
	return l.networkID
}

func (l *Ledger) Close() error {
	return l.storage.Close()
}

// Submit verifies tx and applies it to the ballot program. A malformed
// transaction, a bad signature or an unexpected sequence id fails here and
// is never included. A transaction the program refuses is included as
// `rejected` and consumes the sequence id of its source.
func (l *Ledger) Submit(tx ledger.Transaction) (status ledger.TransactionStatus, err error) {
	if err = tx.IsWellFormed(l.networkID); err != nil {
		return
	}

	l.Lock()
	defer l.Unlock()

	if status, err = GetTransactionStatus(l.storage, tx.GetHash()); err == nil {
		return
	} else if !errors.Is(err, errors.TransactionNotFound) {
		return
	}

	var account ledger.AccountState
	if account, err = GetAccount(l.storage, tx.Source()); err != nil {
		return
	}
	if !tx.IsValidSequenceID(account.SequenceID) {
		err = errors.InvalidSequenceID.Clone().
			SetData("expected", account.SequenceID).
			SetData("sequence_id", tx.B.SequenceID)
		return
	}

	var height uint64
	if height, err = GetHeight(l.storage); err != nil {
		return
	}

	var ts *storage.LevelDBBackend
	if ts, err = l.storage.OpenTransaction(); err != nil {
		return
	}

	status = ledger.TransactionStatus{
		Hash:       tx.GetHash(),
		Source:     tx.Source(),
		Operation:  tx.B.Operation.Type,
		SequenceID: tx.B.SequenceID,
		Status:     ledger.StatusConfirmed,
		Height:     height + 1,
	}

	if perr := ApplyTransaction(ts, tx); perr != nil {
		if errors.Is(perr, errors.StorageCoreError) {
			ts.Discard()
			err = perr
			return
		}

		// the program left partial writes; only the bookkeeping below is kept
		ts.Discard()
		if ts, err = l.storage.OpenTransaction(); err != nil {
			return
		}
		status.Status = ledger.StatusRejected
		status.Reason = rejectReason(perr)
	}

	account.SequenceID++
	if err = l.commit(ts, tx, account, status); err != nil {
		return
	}

	logger := log.New("hash", status.Hash, "source", status.Source, "operation", status.Operation)
	logger.Debug("transaction settled", "status", status.Status, "height", status.Height, "reason", status.Reason)

	metrics.Ledger.TransactionsTotal.With("operation", string(status.Operation), "status", status.Status).Add(1)
	metrics.Ledger.Height.Set(float64(status.Height))

	observer.TransactionObserver.Trigger(EventTransaction(status.Hash), status)
	observer.TransactionObserver.Trigger(EventTransactionAll, status)

	return
}

func (l *Ledger) commit(ts *storage.LevelDBBackend, tx ledger.Transaction, account ledger.AccountState, status ledger.TransactionStatus) (err error) {
	defer func() {
		if err != nil {
			ts.Discard()
		}
	}()

	if err = PutTransaction(ts, tx); err != nil {
		return
	}
	if err = PutAccount(ts, account); err != nil {
		return
	}
	if err = PutTransactionStatus(ts, status); err != nil {
		return
	}
	if err = PutHeight(ts, status.Height); err != nil {
		return
	}

	return ts.Commit()
}

func (l *Ledger) Height() (uint64, error) {
	l.RLock()
	defer l.RUnlock()

	return GetHeight(l.storage)
}

func (l *Ledger) Account(address string) (ledger.AccountState, error) {
	l.RLock()
	defer l.RUnlock()

	return GetAccount(l.storage, address)
}

func (l *Ledger) TransactionStatus(hash string) (ledger.TransactionStatus, error) {
	l.RLock()
	defer l.RUnlock()

	return GetTransactionStatus(l.storage, hash)
}

func (l *Ledger) Transaction(hash string) (ledger.Transaction, error) {
	l.RLock()
	defer l.RUnlock()

	return GetTransaction(l.storage, hash)
}

func (l *Ledger) Ballot() (state ledger.BallotState, err error) {
	l.RLock()
	defer l.RUnlock()

	var record BallotRecord
	if record, err = GetBallotRecord(l.storage); err != nil {
		return
	}
	if state.Height, err = GetHeight(l.storage); err != nil {
		return
	}

	state.Name = record.Name
	state.Proposal = record.Proposal
	state.Creator = record.Creator
	state.Phase = record.Phase

	return
}

func (l *Ledger) Choices() (state ledger.ChoicesState, err error) {
	l.RLock()
	defer l.RUnlock()

	var record BallotRecord
	if record, err = GetBallotRecord(l.storage); err != nil {
		return
	}
	if state.Height, err = GetHeight(l.storage); err != nil {
		return
	}

	state.Choices = record.Choices
	if state.Choices == nil {
		state.Choices = []ballot.Choice{}
	}

	return
}

func (l *Ledger) VoterCount() (state ledger.VoterCountState, err error) {
	l.RLock()
	defer l.RUnlock()

	var record BallotRecord
	if record, err = GetBallotRecord(l.storage); err != nil {
		return
	}
	if state.Height, err = GetHeight(l.storage); err != nil {
		return
	}

	state.TotalVoters = record.TotalVoters

	return
}

func (l *Ledger) Voter(address string) (state ledger.VoterState, err error) {
	l.RLock()
	defer l.RUnlock()

	var record ballot.VoterRecord
	if record, err = GetVoterRecord(l.storage, address); err != nil {
		return
	}
	if state.Height, err = GetHeight(l.storage); err != nil {
		return
	}

	state.Address = address
	state.Registered = record.Registered
	state.HasVoted = record.HasVoted

	return
}

// OpenLedger opens the ledger kept in the storage of uri, `memory://` or
// `file:///path`.
func OpenLedger(uri string, networkID []byte) (*Ledger, error) {
	config, err := storage.NewConfigFromString(uri)
	if err != nil {
		return nil, err
	}

	st := &storage.LevelDBBackend{}
	if err = st.Init(config); err != nil {
		return nil, err
	}

	return NewLedger(st, networkID), nil
}

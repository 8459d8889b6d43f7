package session

import (
	"context"
	"sync"
	"time"

	"boscoin.io/devote/lib/ballot"
	"boscoin.io/devote/lib/common"
	"boscoin.io/devote/lib/errors"
	"boscoin.io/devote/lib/identity"
	"boscoin.io/devote/lib/ledger"
	"boscoin.io/devote/lib/metrics"
	"boscoin.io/devote/lib/store"
)

// Precheck checks the preconditions of a write against the latest
// snapshot. It runs while the signer holds the write guard.
type Precheck func(ctx context.Context, snapshot ballot.Snapshot) error

// signers is the write guard of every Submitter in the process; two
// sessions signing with the same identity exclude each other.
var signers = NewGuard()

// Submitter applies the write policy shared by every ballot operation:
//
// - one in-flight write per signer, across the process
// - a signer whose last write has an unknown outcome refreshes first
// - preconditions are checked against the latest snapshot
// - a rejected write is not retried; the store is refreshed instead
// - a confirmed write refreshes the store up to the receipt height
type Submitter struct {
	sync.Mutex

	gateway ledger.Submitter
	store   *store.Store
	guard   *Guard
	config  common.Config

	// signers whose last write may or may not have landed
	unsettled map[string]ballot.OperationType
}

func NewSubmitter(gateway ledger.Submitter, st *store.Store, config common.Config) (*Submitter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Submitter{
		gateway:   gateway,
		store:     st,
		guard:     signers,
		config:    config,
		unsettled: map[string]ballot.OperationType{},
	}, nil
}

func (s *Submitter) Store() *store.Store {
	return s.store
}

func (s *Submitter) Config() common.Config {
	return s.config
}

// Unsettled reports whether the last write of `address` failed with an
// unknown outcome and was not followed by a refresh yet.
func (s *Submitter) Unsettled(address string) bool {
	s.Lock()
	defer s.Unlock()

	_, found := s.unsettled[address]
	return found
}

func (s *Submitter) unsettle(address string, op ballot.OperationType) {
	s.Lock()
	defer s.Unlock()

	s.unsettled[address] = op
}

func (s *Submitter) settle(address string) {
	s.Lock()
	defer s.Unlock()

	delete(s.unsettled, address)
}

func (s *Submitter) Submit(
	ctx context.Context,
	signer identity.Signer,
	op ballot.OperationType,
	args interface{},
	precheck Precheck,
) (result Result, err error) {
	address := signer.Address()

	var release func()
	if release, err = s.guard.Acquire(address, op); err != nil {
		return
	}
	defer release()

	logger := log.New("operation", op, "signer", address)

	if s.Unsettled(address) {
		logger.Debug("last write of signer is unsettled; refreshing first")
		if err = s.store.Refresh(ctx); err != nil && !errors.Is(err, errors.StaleSnapshot) {
			return
		}
		s.settle(address)
	}

	if precheck != nil {
		if err = precheck(ctx, s.store.Snapshot()); err != nil {
			logger.Debug("precondition failed", "error", err)
			return
		}
	}

	started := time.Now()
	receipt, err := s.gateway.SubmitTransaction(ctx, signer, op, args)
	recordSubmission(op, started, err)

	switch {
	case err == nil:
	case errors.Is(err, errors.Rejected):
		logger.Debug("rejected by ledger; refreshing", "error", err)
		if rerr := s.store.Refresh(ctx); rerr != nil && !errors.Is(rerr, errors.StaleSnapshot) {
			logger.Error("failed to refresh after rejection", "error", rerr)
			s.unsettle(address, op)
		}
		return
	case errors.IsTransient(err):
		logger.Info("outcome of write is unknown; refresh before retrying", "error", err)
		s.unsettle(address, op)
		err = markUnknown(err)
		return
	default:
		return
	}

	result.Receipt = receipt
	if err = s.store.RefreshUntil(ctx, receipt.Height); err != nil {
		logger.Error("write landed but refresh failed", "hash", receipt.Hash, "error", err)
		s.unsettle(address, op)
		if e, ok := errors.As(err); ok {
			err = e.Clone().SetData("landed", receipt.Hash)
		}
		return
	}
	result.Snapshot = s.store.Snapshot()

	logger.Info("write confirmed", "hash", receipt.Hash, "height", receipt.Height, "phase", result.Snapshot.Ballot.Phase)

	return
}

func markUnknown(err error) error {
	e, ok := errors.As(err)
	if !ok {
		return err
	}

	return e.Clone().SetData("outcome", "unknown")
}

var errorKinds = map[uint]string{
	errors.Network.Code:  "network",
	errors.Timeout.Code:  "timeout",
	errors.Rejected.Code: "rejected",
	errors.NotFound.Code: "not-found",
}

func recordSubmission(op ballot.OperationType, started time.Time, err error) {
	status, kind := metrics.StatusSuccess, ""
	if err != nil {
		status, kind = metrics.StatusFailure, "other"
		if e, ok := errors.As(err); ok {
			if k, found := errorKinds[e.Code]; found {
				kind = k
			}
		}
	}

	metrics.Ballot.SubmissionsTotal.With("operation", string(op), "status", status, "kind", kind).Add(1)
	metrics.Ballot.SubmissionDurationSeconds.With("operation", string(op), "status", status).Observe(time.Since(started).Seconds())
}

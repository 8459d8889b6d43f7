package devnet

import (
	"encoding/json"
	"io/ioutil"
	"net/http"

	"github.com/gorilla/mux"

	"boscoin.io/devote/lib/errors"
	"boscoin.io/devote/lib/ledger"
	"boscoin.io/devote/lib/network/httputils"
)

// API Endpoint patterns
const (
	GetAccountHandlerPattern           = "/accounts/{id}"
	PostTransactionPattern             = "/transactions"
	GetTransactionHandlerPattern       = "/transactions/{id}"
	GetTransactionStatusHandlerPattern = "/transactions/{id}/status"
	GetBallotHandlerPattern            = "/ballot"
	GetBallotChoicesHandlerPattern     = "/ballot/choices"
	GetBallotVotersHandlerPattern      = "/ballot/voters"
	GetBallotVoterHandlerPattern       = "/ballot/voters/{id}"
)

const maxTransactionSize = 64 * 1024

type NetworkHandlerAPI struct {
	ledger *Ledger
}

func NewNetworkHandlerAPI(l *Ledger) *NetworkHandlerAPI {
	return &NetworkHandlerAPI{ledger: l}
}

func writeResult(w http.ResponseWriter, v interface{}, err error) {
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	if err := httputils.WriteJSON(w, http.StatusOK, v); err != nil {
		log.Error("failed to write response", "error", err)
	}
}

func noStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
}

func (api NetworkHandlerAPI) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	noStore(w)
	account, err := api.ledger.Account(mux.Vars(r)["id"])
	writeResult(w, NewAccountResource(account), err)
}

func (api NetworkHandlerAPI) PostTransactionHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	if !httputils.IsJSONContentType(r) {
		httputils.WriteJSONError(w, errors.ContentTypeNotJSON)
		return
	}

	body, err := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, maxTransactionSize))
	if err != nil {
		httputils.WriteJSONError(w, errors.InvalidTransaction.Wrap(err))
		return
	}

	var tx ledger.Transaction
	if err = json.Unmarshal(body, &tx); err != nil {
		httputils.WriteJSONError(w, errors.InvalidTransaction.Wrap(err))
		return
	}

	status, err := api.ledger.Submit(tx)
	if err != nil {
		log.Debug("transaction refused", "hash", tx.GetHash(), "error", err)
		httputils.WriteJSONError(w, err)
		return
	}

	if err := httputils.WriteJSON(w, http.StatusOK, NewTransactionPostResource(status)); err != nil {
		log.Error("failed to write response", "error", err)
	}
}

func (api NetworkHandlerAPI) GetTransactionHandler(w http.ResponseWriter, r *http.Request) {
	tx, err := api.ledger.Transaction(mux.Vars(r)["id"])
	writeResult(w, NewTransactionResource(tx), err)
}

// GetTransactionStatusHandler answers the status of a transaction; only
// final statuses may be cached.
func (api NetworkHandlerAPI) GetTransactionStatusHandler(w http.ResponseWriter, r *http.Request) {
	status, err := api.ledger.TransactionStatus(mux.Vars(r)["id"])
	if err != nil || !status.IsFinal() {
		noStore(w)
	}
	writeResult(w, NewTransactionStatusResource(status), err)
}

func (api NetworkHandlerAPI) GetBallotHandler(w http.ResponseWriter, r *http.Request) {
	noStore(w)
	state, err := api.ledger.Ballot()
	writeResult(w, NewBallotResource(state), err)
}

func (api NetworkHandlerAPI) GetBallotChoicesHandler(w http.ResponseWriter, r *http.Request) {
	noStore(w)
	state, err := api.ledger.Choices()
	writeResult(w, NewChoicesResource(state), err)
}

func (api NetworkHandlerAPI) GetBallotVotersHandler(w http.ResponseWriter, r *http.Request) {
	noStore(w)
	state, err := api.ledger.VoterCount()
	writeResult(w, NewVoterCountResource(state), err)
}

func (api NetworkHandlerAPI) GetBallotVoterHandler(w http.ResponseWriter, r *http.Request) {
	noStore(w)
	state, err := api.ledger.Voter(mux.Vars(r)["id"])
	writeResult(w, NewVoterResource(state), err)
}
